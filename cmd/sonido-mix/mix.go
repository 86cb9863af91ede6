package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/sonido-mix/audiofile"
	"github.com/RyanBlaney/sonido-mix/pipeline"
)

var (
	outPath     string
	genreName   string
	platform    string
	targetLUFS  float64
	transparent bool
	reportPath  string
)

var mixCmd = &cobra.Command{
	Use:   "mix [stems...]",
	Short: "Mix and master a set of WAV stems",
	Long: `Reads the given WAV stems, classifies each one by filename and
content, renders a balanced mix and masters it to the chosen platform
loudness target. Roles are inferred; name stems after their content
(kick.wav, bass.wav, lead_vocal.wav) for best results.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMix,
}

func init() {
	rootCmd.AddCommand(mixCmd)

	mixCmd.Flags().StringVarP(&outPath, "out", "o", "master.wav", "output WAV path")
	mixCmd.Flags().StringVar(&genreName, "genre", "", "genre override (house, techno, edm, hiphop, pop, rock, rnb, acoustic)")
	mixCmd.Flags().StringVar(&platform, "platform", "", "platform target (spotify, apple_music, youtube, soundcloud, club, dynamic)")
	mixCmd.Flags().Float64Var(&targetLUFS, "target-lufs", 0, "loudness target override in LUFS")
	mixCmd.Flags().BoolVar(&transparent, "transparent", false, "transparent mastering: normalize and limit only")
	mixCmd.Flags().StringVar(&reportPath, "report", "", "write the session report as JSON to this path")

	viper.BindPFlag("genre", mixCmd.Flags().Lookup("genre"))
	viper.BindPFlag("platform", mixCmd.Flags().Lookup("platform"))
	viper.BindPFlag("target_lufs", mixCmd.Flags().Lookup("target-lufs"))
	viper.BindPFlag("transparent", mixCmd.Flags().Lookup("transparent"))
}

func runMix(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stems, err := audiofile.LoadStems(args)
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		Genre:       stringSetting("genre", genreName),
		Platform:    stringSetting("platform", platform),
		TargetLUFS:  targetLUFS,
		Transparent: transparent || viper.GetBool("transparent"),
	}
	if opts.TargetLUFS == 0 {
		opts.TargetLUFS = viper.GetFloat64("target_lufs")
	}

	mastered, report, err := pipeline.New().Run(ctx, stems, opts)
	if err != nil {
		return err
	}

	if err := audiofile.WriteWAV(outPath, mastered); err != nil {
		return err
	}

	printSummary(cmd, report)

	if reportPath != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		if err := os.WriteFile(reportPath, data, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	return nil
}

// stringSetting prefers the flag value and falls back to config.
func stringSetting(key, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return viper.GetString(key)
}

func printSummary(cmd *cobra.Command, report *pipeline.Report) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "genre:    %s (%.0f%% confidence, %.0f BPM)\n",
		report.Genre.Genre, report.Genre.Confidence*100, report.Genre.Tempo)
	fmt.Fprintf(out, "platform: %s (%.0f LUFS, %.1f dBTP)\n",
		report.Platform.Name, report.Platform.TargetLUFS, report.Platform.CeilingDB)

	for _, s := range report.Mix.Stems {
		fmt.Fprintf(out, "  %-24s %-14s gain %+5.1f dB  pan %+3.0f  bus %s\n",
			s.Name, s.Role, s.GainDB, s.PanDegrees, s.Bus)
	}

	m := report.Mastering.Metrics
	fmt.Fprintf(out, "result:   %.1f LUFS, %.1f dBTP, LRA %.1f, crest %.1f dB\n",
		m.IntegratedLUFS, m.TruePeakDB, m.LoudnessRange, m.CrestDB)

	warnings := append(append([]string{}, report.Mix.Warnings...), report.Mastering.Warnings...)
	for _, w := range warnings {
		fmt.Fprintf(out, "warning:  %s\n", w)
	}
}
