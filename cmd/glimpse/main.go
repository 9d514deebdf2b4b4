// Package main provides the glimpse CLI.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"

	"github.com/born-ml/glimpse/internal/attention"
	"github.com/born-ml/glimpse/internal/glimpse"
	"github.com/born-ml/glimpse/internal/optim"
	"github.com/born-ml/glimpse/internal/trainer"
	"gonum.org/v1/gonum/mat"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("glimpse %s\n", version)
	case "train":
		if err := train(os.Args[2:]); err != nil {
			log.Fatalf("train: %v", err)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("glimpse - hybrid REINFORCE and backprop attention trainer")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  train      Train the reference glimpse model on synthetic data")
}

func train(args []string) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	epochs := fs.Int("epochs", 10, "Number of training epochs")
	samples := fs.Int("samples", 4000, "Number of synthetic examples")
	valFrac := fs.Float64("val", 0.2, "Fraction of examples held out for validation")
	batchSize := fs.Int("batch", 20, "Accepted examples per update")
	lr := fs.Float64("lr", 0.01, "Learning rate")
	method := fs.String("method", "finetuning_adagrad", "Update rule: finetuning_adagrad, adagrad, sgd, adam")
	smallVar := fs.Float64("small", 0.01, "Exploitation position variance")
	largeVar := fs.Float64("large", 0.09, "Exploration position variance")
	noBackprop := fs.Bool("no-backprop", false, "Disable supervised updates")
	noReinforce := fs.Bool("no-reinforce", false, "Disable policy updates")
	verbose := fs.Bool("v", false, "Log every event instead of progress markers")
	seed := fs.Uint64("seed", 1, "Random seed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))

	gauss, err := attention.NewGaussian(
		mat.NewDense(1, 1, []float64{*smallVar}),
		mat.NewDense(1, 1, []float64{*largeVar}),
	)
	if err != nil {
		return err
	}
	ctrl, err := attention.NewController(gauss, gauss.Small(), gauss.Large())
	if err != nil {
		return err
	}

	cfg := glimpse.DefaultConfig()
	model, err := glimpse.New(cfg, gauss, rng)
	if err != nil {
		return err
	}
	data := glimpse.Generate(*samples, cfg, rng)
	trainData, valData := data.Split(*valFrac)
	fmt.Printf("Train: %d samples, Val: %d samples\n", len(trainData), len(valData))

	tcfg := trainer.DefaultConfig()
	tcfg.LearningRate = *lr
	tcfg.BatchSize = *batchSize
	tcfg.Method = optim.Method(*method)
	tcfg.DisableBackprop = *noBackprop
	tcfg.DisableReinforce = *noReinforce

	t, err := trainer.New(model, trainer.Params{
		Supervised: model.Parameters(),
		Policy:     model.PolicyWeight(),
	}, ctrl, tcfg)
	if err != nil {
		return err
	}
	if *verbose {
		t.SetMonitor(trainer.NewLogMonitor(log.New(os.Stderr, "", log.LstdFlags)))
	}

	for range *epochs {
		trainData.Shuffle(rng)
		res, err := t.TrainEpoch(trainData.All())
		if errors.Is(err, trainer.ErrCostOverflow) {
			fmt.Println("cost overflow: epoch skipped")
			continue
		}
		if err != nil {
			return err
		}

		valAcc, err := model.Accuracy(valData)
		if err != nil {
			return err
		}
		fmt.Printf("Epoch %2d/%d: %s, Val Acc=%.2f%%, Cov=%s\n",
			res.Epoch, *epochs, res, valAcc*100, t.CovarianceMode())
	}
	return nil
}
