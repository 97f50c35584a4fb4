// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

package training

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/verdantlabs/ecoscore/internal/encode"
	"github.com/verdantlabs/ecoscore/internal/model"
)

// Sentinel errors surfaced by the pipeline.
var (
	// ErrInsufficientData is returned when fewer valid examples survive
	// filtering than Config.MinSamples. Training on too little data is
	// worse than not training.
	ErrInsufficientData = errors.New("insufficient valid training samples")

	// ErrNonFiniteLoss is returned when the training loss becomes NaN or
	// infinite. A poisoned run must never export an artifact.
	ErrNonFiniteLoss = errors.New("non-finite training loss")
)

// Config holds the training hyperparameters.
type Config struct {
	// Epochs is the maximum number of training epochs.
	// Default: 200.
	Epochs int `json:"epochs" koanf:"epochs"`

	// BatchSize is the mini-batch size; batches are reshuffled every epoch.
	// Default: 32.
	BatchSize int `json:"batch_size" koanf:"batch_size"`

	// LearningRate is the Adam step size.
	// Default: 0.001.
	LearningRate float64 `json:"learning_rate" koanf:"learning_rate"`

	// L2Lambda is the L2 weight-regularization coefficient.
	// Default: 1e-4.
	L2Lambda float64 `json:"l2_lambda" koanf:"l2_lambda"`

	// Dropout is the hidden-layer dropout probability, training time only.
	// Default: 0.2.
	Dropout float64 `json:"dropout" koanf:"dropout"`

	// Patience is the number of consecutive epochs without a validation
	// improvement exceeding MinDelta before early stopping.
	// Default: 20.
	Patience int `json:"patience" koanf:"patience"`

	// MinDelta is the minimum validation-loss improvement that resets the
	// patience counter.
	// Default: 1e-5.
	MinDelta float64 `json:"min_delta" koanf:"min_delta"`

	// TestFraction and ValidationFraction are computed against the
	// original corpus total; test is carved out first.
	// Defaults: 0.15 each.
	TestFraction       float64 `json:"test_fraction" koanf:"test_fraction"`
	ValidationFraction float64 `json:"validation_fraction" koanf:"validation_fraction"`

	// MinSamples is the minimum number of valid examples required to
	// start training.
	// Default: 50.
	MinSamples int `json:"min_samples" koanf:"min_samples"`

	// Seed drives shuffling, initialization and dropout for reproducible
	// runs.
	// Default: 42.
	Seed int64 `json:"seed" koanf:"seed"`
}

// DefaultConfig returns the training defaults.
func DefaultConfig() Config {
	return Config{
		Epochs:             200,
		BatchSize:          32,
		LearningRate:       0.001,
		L2Lambda:           1e-4,
		Dropout:            0.2,
		Patience:           20,
		MinDelta:           1e-5,
		TestFraction:       0.15,
		ValidationFraction: 0.15,
		MinSamples:         50,
		Seed:               42,
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.Epochs < 1 {
		return fmt.Errorf("epochs must be positive, got %d", c.Epochs)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be positive, got %f", c.LearningRate)
	}
	if c.Dropout < 0 || c.Dropout >= 1 {
		return fmt.Errorf("dropout must be in [0, 1), got %f", c.Dropout)
	}
	if c.TestFraction < 0 || c.ValidationFraction < 0 || c.TestFraction+c.ValidationFraction >= 1 {
		return fmt.Errorf("test_fraction + validation_fraction must be below 1, got %f + %f",
			c.TestFraction, c.ValidationFraction)
	}
	if c.Patience < 1 {
		return fmt.Errorf("patience must be positive, got %d", c.Patience)
	}
	if c.MinSamples < 10 {
		return fmt.Errorf("min_samples must be at least 10, got %d", c.MinSamples)
	}
	return nil
}

// Report summarizes a completed training run.
type Report struct {
	TrainSamples      int
	ValidationSamples int
	TestSamples       int
	Drops             DropStats
	EpochsRun         int
	BestEpoch         int
	BestValLoss       float64
	Validation        model.Accuracy
	Test              model.Accuracy
	Duration          time.Duration
}

// Trainer runs the full pipeline from labeled records to an exported
// artifact. It is a long-running batch job, cancellable at epoch
// granularity via the context.
type Trainer struct {
	cfg    Config
	logger zerolog.Logger
}

// NewTrainer creates a trainer with the given configuration.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrainer(cfg Config, logger zerolog.Logger) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Trainer{
		cfg:    cfg,
		logger: logger.With().Str("component", "training").Logger(),
	}, nil
}

// Run executes the pipeline: filter, encode, split, normalize, train with
// early stopping, evaluate, export. The returned artifact contains the
// parameters of the best-validation epoch.
func (t *Trainer) Run(ctx context.Context, records []Record) (*model.Artifact, *Report, error) {
	start := time.Now()

	examples, drops := BuildDataset(records)
	t.logger.Info().
		Int("records", len(records)).
		Int("valid", len(examples)).
		Int("rejected_label", drops.MissingLabel).
		Int("rejected_category", drops.MissingCategory).
		Int("rejected_vector", drops.BadVector).
		Msg("dataset built")

	if len(examples) < t.cfg.MinSamples {
		return nil, nil, fmt.Errorf("%w: %d valid of %d records (%d rejected), need %d",
			ErrInsufficientData, len(examples), len(records), drops.Total(), t.cfg.MinSamples)
	}

	rng := rand.New(rand.NewSource(t.cfg.Seed)) //nolint:gosec // reproducible shuffling, not cryptography
	train, validation, test := Split(examples, t.cfg.TestFraction, t.cfg.ValidationFraction, rng)

	stats := ComputeStats(train)
	trainN := stats.ApplyAll(train)
	valN := stats.ApplyAll(validation)
	testN := stats.ApplyAll(test)

	net := newNetwork(rng)
	best, report, err := t.trainLoop(ctx, net, trainN, valN, rng)
	if err != nil {
		return nil, nil, err
	}

	report.TrainSamples = len(train)
	report.ValidationSamples = len(validation)
	report.TestSamples = len(test)
	report.Drops = drops
	report.Validation = Evaluate(best.predictEval, valN)
	report.Test = Evaluate(best.predictEval, testN)
	report.Duration = time.Since(start)

	t.logger.Info().
		Int("best_epoch", report.BestEpoch).
		Float64("val_rmse", report.Validation.RMSE).
		Float64("test_rmse", report.Test.RMSE).
		Float64("test_r2", report.Test.R2).
		Dur("duration", report.Duration).
		Msg("training complete")

	return t.export(best, stats, report), report, nil
}

// trainLoop runs mini-batch epochs with early stopping and returns the
// snapshot of the best-validation epoch.
func (t *Trainer) trainLoop(ctx context.Context, net *network, train, validation []Example, rng *rand.Rand) (*network, *Report, error) {
	opt := newAdam(net, t.cfg.LearningRate)
	report := &Report{BestValLoss: math.Inf(1)}
	best := net.snapshot()
	sinceImprovement := 0

	order := make([]int, len(train))
	for i := range order {
		order[i] = i
	}

	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		// Cancellation is honored between epochs only; an epoch is the
		// smallest unit of consistent optimizer state.
		select {
		case <-ctx.Done():
			return nil, nil, fmt.Errorf("training cancelled at epoch %d: %w", epoch, ctx.Err())
		default:
		}

		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		trainLoss := t.runEpoch(net, opt, train, order)
		if math.IsNaN(trainLoss) || math.IsInf(trainLoss, 0) {
			return nil, nil, fmt.Errorf("%w at epoch %d", ErrNonFiniteLoss, epoch)
		}

		valLoss := evalLoss(net, validation)
		report.EpochsRun = epoch

		if report.BestValLoss-valLoss > t.cfg.MinDelta {
			report.BestValLoss = valLoss
			report.BestEpoch = epoch
			best = net.snapshot()
			sinceImprovement = 0
		} else {
			sinceImprovement++
		}

		if epoch%10 == 0 || sinceImprovement >= t.cfg.Patience {
			t.logger.Debug().
				Int("epoch", epoch).
				Float64("train_loss", trainLoss).
				Float64("val_loss", valLoss).
				Int("stale_epochs", sinceImprovement).
				Msg("epoch complete")
		}

		if sinceImprovement >= t.cfg.Patience {
			t.logger.Info().
				Int("stopped_at", epoch).
				Int("best_epoch", report.BestEpoch).
				Float64("best_val_loss", report.BestValLoss).
				Msg("early stopping")
			break
		}
	}
	return best, report, nil
}

// runEpoch performs one pass over the training partition in mini-batches
// and returns the mean batch loss (MSE plus L2 penalty).
func (t *Trainer) runEpoch(net *network, opt *adam, train []Example, order []int) float64 {
	var lossSum float64
	batches := 0

	for from := 0; from < len(order); from += t.cfg.BatchSize {
		to := from + t.cfg.BatchSize
		if to > len(order) {
			to = len(order)
		}
		batch := make([][]float64, 0, to-from)
		targets := make([]float64, 0, to-from)
		for _, idx := range order[from:to] {
			batch = append(batch, train[idx].Features)
			targets = append(targets, train[idx].Target)
		}

		preds, caches := net.forwardTrain(batch, t.cfg.Dropout)
		grads := net.backward(caches, preds, targets, t.cfg.L2Lambda)
		opt.update(net, grads)

		lossSum += mseLoss(preds, targets) + t.l2Penalty(net)
		batches++
	}
	if batches == 0 {
		return 0
	}
	return lossSum / float64(batches)
}

// l2Penalty computes the regularization term 0.5 * lambda * sum(w^2).
func (t *Trainer) l2Penalty(net *network) float64 {
	if t.cfg.L2Lambda == 0 {
		return 0
	}
	var sum float64
	for _, layer := range net.weights {
		for _, row := range layer {
			for _, w := range row {
				sum += w * w
			}
		}
	}
	return 0.5 * t.cfg.L2Lambda * sum
}

// evalLoss computes plain MSE of the network in evaluation mode.
func evalLoss(net *network, examples []Example) float64 {
	if len(examples) == 0 {
		return 0
	}
	var sum float64
	for _, ex := range examples {
		d := net.predictEval(ex.Features) - ex.Target
		sum += d * d
	}
	return sum / float64(len(examples))
}

func mseLoss(preds, targets []float64) float64 {
	var sum float64
	for i, p := range preds {
		d := p - targets[i]
		sum += d * d
	}
	return sum / float64(len(preds))
}

// export assembles the artifact from the best snapshot. The artifact is
// the sole channel to the inference engine; it also records the encoder's
// category-table size and food groups for the sync validator.
func (t *Trainer) export(net *network, stats Stats, report *Report) *model.Artifact {
	layers := make([]model.Layer, len(net.weights))
	for l := range net.weights {
		rows := make([][]float64, len(net.weights[l]))
		for j, row := range net.weights[l] {
			rows[j] = append([]float64(nil), row...)
		}
		layers[l] = model.Layer{
			Weights: rows,
			Biases:  append([]float64(nil), net.biases[l]...),
		}
	}

	bns := make([]model.BatchNorm, len(net.bn))
	for l, bn := range net.bn {
		bns[l] = model.BatchNorm{
			Scale:    append([]float64(nil), bn.scale...),
			Shift:    append([]float64(nil), bn.shift...),
			Mean:     append([]float64(nil), bn.runningMean...),
			Variance: append([]float64(nil), bn.runningVar...),
		}
	}

	return &model.Artifact{
		Version:      model.CurrentVersion,
		Layers:       layers,
		BatchNorms:   bns,
		FeatureMeans: append([]float64(nil), stats.Means...),
		FeatureStds:  append([]float64(nil), stats.Stds...),
		Meta: model.Metadata{
			Architecture: model.ArchitectureString(),
			Hyperparams: model.Hyperparameters{
				Epochs:       t.cfg.Epochs,
				BatchSize:    t.cfg.BatchSize,
				LearningRate: t.cfg.LearningRate,
				L2Lambda:     t.cfg.L2Lambda,
				Dropout:      t.cfg.Dropout,
				Patience:     t.cfg.Patience,
				MinDelta:     t.cfg.MinDelta,
				Seed:         t.cfg.Seed,
			},
			TrainSamples:      report.TrainSamples,
			ValidationSamples: report.ValidationSamples,
			TestSamples:       report.TestSamples,
			RejectedSamples:   report.Drops.Total(),
			BestEpoch:         report.BestEpoch,
			Validation:        report.Validation,
			Test:              report.Test,
			CategoryTableSize: encode.CategoryTableSize(),
			FoodGroups:        encode.FoodGroups(),
			TrainedAt:         time.Now().UTC(),
		},
	}
}
