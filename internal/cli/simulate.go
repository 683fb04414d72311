package cli

import (
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/beacon"
	"github.com/wesleyorama2/beacon/config"
	"github.com/wesleyorama2/beacon/internal/output"
	"github.com/wesleyorama2/beacon/timing"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <registry.yaml>",
	Short: "Run a simulated recording session against a registry",
	Long: `Load a metrics registry, record simulated timings into every metric from
concurrent workers, then drain the dispatcher and print the resulting
distributions.

Example:
  beacon simulate metrics.yaml --iterations 200 --workers 8 --work 2ms`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		iterations, _ := cmd.Flags().GetInt("iterations")
		workers, _ := cmd.Flags().GetInt("workers")
		work, _ := cmd.Flags().GetDuration("work")
		noColor, _ := cmd.Flags().GetBool("no-color")
		return runSimulate(cmd, args[0], iterations, workers, work, noColor)
	},
}

func init() {
	simulateCmd.Flags().Int("iterations", 100, "Timings to record per metric")
	simulateCmd.Flags().Int("workers", 4, "Concurrent producer goroutines per metric")
	simulateCmd.Flags().Duration("work", 2*time.Millisecond, "Base duration of each simulated operation")
	simulateCmd.Flags().Bool("no-color", false, "Disable colored output")
}

func runSimulate(cmd *cobra.Command, path string, iterations, workers int, work time.Duration, noColor bool) error {
	if iterations < 1 {
		iterations = 1
	}
	if workers < 1 {
		workers = 1
	}

	reg, err := config.Load(path)
	if err != nil {
		return err
	}

	rt := beacon.New()
	defer rt.Close()

	metrics := make([]*timing.Distribution, 0, len(reg.Definitions))
	for _, def := range reg.Definitions {
		metrics = append(metrics, rt.NewTimingDistribution(def.MetricData()))
	}

	for _, metric := range metrics {
		record(metric, iterations, workers, work)
	}

	scheme := output.SchemeFor(os.Stdout, noColor)
	out := cmd.OutOrStdout()
	for _, metric := range metrics {
		meta := metric.Metadata()
		fmt.Fprintf(out, "%s\n", scheme.Metric.Sprint(meta.Identifier()))

		data, err := metric.TestGetValue("")
		if err != nil {
			fmt.Fprintf(out, "  %s no values recorded\n", output.InfoIcon(noColor))
			continue
		}
		printDistribution(cmd, scheme, meta, data)
	}
	return nil
}

// record spreads the iterations across concurrent workers, timing each
// simulated operation with Measure.
func record(metric *timing.Distribution, iterations, workers int, work time.Duration) {
	var wg sync.WaitGroup
	per := iterations / workers
	extra := iterations % workers

	for w := 0; w < workers; w++ {
		n := per
		if w < extra {
			n++
		}
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for i := 0; i < n; i++ {
				_ = timing.Time(metric, func() error {
					// Jitter up to half the base duration.
					jitter := time.Duration(rand.Int63n(int64(work)/2 + 1))
					time.Sleep(work + jitter)
					return nil
				})
			}
		}(n)
	}
	wg.Wait()
}

func printDistribution(cmd *cobra.Command, scheme *output.ColorScheme, meta timing.CommonMetricData, data timing.DistributionData) {
	out := cmd.OutOrStdout()
	ping := ""
	if len(meta.SendInPings) > 0 {
		ping = meta.SendInPings[0]
	}

	fmt.Fprintf(out, "  ping %s: count=%s sum=%s %s\n",
		scheme.Ping.Sprint(ping),
		scheme.Value.Sprintf("%d", data.Count),
		scheme.Value.Sprintf("%d", data.Sum),
		meta.TimeUnit)

	bounds := make([]int64, 0, len(data.Values))
	for bound := range data.Values {
		bounds = append(bounds, bound)
	}
	sort.Slice(bounds, func(i, j int) bool { return bounds[i] < bounds[j] })

	for _, bound := range bounds {
		fmt.Fprintf(out, "    %s: %d\n", scheme.Bucket.Sprintf("≥%d", bound), data.Values[bound])
	}
}
