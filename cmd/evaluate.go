package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/okian/coachboard/internal/adapters/mq/queue"
	"github.com/okian/coachboard/internal/adapters/mq/worker"
	app "github.com/okian/coachboard/internal/app"
	"github.com/okian/coachboard/internal/domain/assessment"
)

// Output formats of the evaluate command.
const (
	outputJSON = "json"
	outputYAML = "yaml"
)

// Record kinds accepted by the evaluate command.
const (
	kindAssessment   = "assessment"
	kindMovement     = "movement"
	kindInjury       = "injury"
	kindInjuryRecord = "injury-record"
)

var errUnknownKind = errors.New("unknown record kind")

// maxRecordBytes bounds one line of batch input.
const maxRecordBytes = 1 << 20

type evaluateOptions struct {
	output            string
	targetCoefficient float64
	batch             bool
	workers           int
}

func newEvaluateCmd() *cobra.Command {
	opts := evaluateOptions{output: outputJSON, targetCoefficient: assessment.DefaultTargetCoefficient}
	cmd := &cobra.Command{
		Use:       "evaluate {assessment|movement|injury|injury-record} [file|-]",
		Short:     "Evaluate one JSON record and print the result",
		Long:      "Reads one JSON record from a file, or from stdin when the file is omitted or \"-\", and prints its evaluation.",
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{kindAssessment, kindMovement, kindInjury, kindInjuryRecord},
		RunE: func(cmd *cobra.Command, args []string) error {
			src := "-"
			if len(args) == 2 {
				src = args[1]
			}
			in, closeIn, err := openInput(cmd.InOrStdin(), src)
			if err != nil {
				return err
			}
			defer closeIn()
			return runEvaluate(cmd.Context(), args[0], in, cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output format: json or yaml")
	cmd.Flags().BoolVar(&opts.batch, "batch", false, "read newline-delimited JSON records and print a list of evaluations")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "batch workers; 0 uses one per CPU")
	cmd.Flags().Float64Var(&opts.targetCoefficient, "target-coefficient", opts.targetCoefficient, "assessment force target per kg of body weight")
	return cmd
}

func openInput(stdin io.Reader, src string) (io.Reader, func(), error) {
	if src == "" || src == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(src)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", src, err)
	}
	return f, func() { _ = f.Close() }, nil
}

// evaluateFunc evaluates one raw JSON record.
type evaluateFunc = worker.Handler[[]byte, any]

func evaluator[T, R any](eval func(context.Context, T) (R, error)) evaluateFunc {
	return func(ctx context.Context, raw []byte) (any, error) {
		var in T
		if err := json.Unmarshal(raw, &in); err != nil {
			return nil, fmt.Errorf("decode input: %w", err)
		}
		out, err := eval(ctx, in)
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}

func evaluatorFor(svc *app.Service, kind string) (evaluateFunc, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case kindAssessment:
		return evaluator(svc.EvaluateAssessment), nil
	case kindMovement:
		return evaluator(svc.EvaluateMovement), nil
	case kindInjury:
		return evaluator(svc.EvaluateInjury), nil
	case kindInjuryRecord:
		return evaluator(svc.EvaluateInjuryRecord), nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownKind, kind)
	}
}

func runEvaluate(ctx context.Context, kind string, in io.Reader, out io.Writer, opts evaluateOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	format := strings.ToLower(strings.TrimSpace(opts.output))
	if format != outputJSON && format != outputYAML {
		return fmt.Errorf("unknown output format %q", opts.output)
	}
	eval, err := evaluatorFor(app.New(app.WithTargetCoefficient(opts.targetCoefficient)), kind)
	if err != nil {
		return err
	}

	if opts.batch {
		results, err := runBatch(ctx, eval, in, opts.workers)
		if err != nil {
			return err
		}
		return writeResult(out, format, results)
	}

	raw, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	result, err := eval(ctx, raw)
	if err != nil {
		return err
	}
	return writeResult(out, format, result)
}

// runBatch evaluates newline-delimited JSON records on a worker pool and
// returns the evaluations in input order. Blank lines are skipped.
func runBatch(ctx context.Context, eval evaluateFunc, in io.Reader, workers int) ([]any, error) {
	pool := worker.NewPool(workers, eval, worker.WithName("evaluate"))
	q := queue.NewInMemoryQueue[worker.Job[[]byte]](
		queue.WithCapacity(2*pool.Size()),
		queue.WithName("evaluate"),
	)
	results := pool.Run(ctx, q)

	fed := make(chan error, 1)
	go func() {
		defer func() { _ = q.Close() }()
		sc := bufio.NewScanner(in)
		sc.Buffer(make([]byte, 0, 64*1024), maxRecordBytes)
		seq := 0
		for sc.Scan() {
			line := bytes.TrimSpace(sc.Bytes())
			if len(line) == 0 {
				continue
			}
			job := worker.Job[[]byte]{Seq: seq, Payload: bytes.Clone(line)}
			if err := q.Enqueue(ctx, job); err != nil {
				fed <- err
				return
			}
			seq++
		}
		fed <- sc.Err()
	}()

	all := worker.Collect(results)
	if err := <-fed; err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	out := make([]any, 0, len(all))
	for _, r := range all {
		if r.Err != nil {
			return nil, fmt.Errorf("record %d: %w", r.Seq+1, r.Err)
		}
		out = append(out, r.Value)
	}
	return out, nil
}

func writeResult(w io.Writer, format string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if format == outputJSON {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	// Going through a yaml.Node keeps the JSON key order.
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return fmt.Errorf("convert result: %w", err)
	}
	blockStyle(&node)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return enc.Close()
}

// blockStyle drops the flow and quoting styles inherited from JSON. The
// encoder still quotes strings that would resolve to another type.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
