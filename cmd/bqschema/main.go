// Package main contains the cli implementation of the tool. It uses the
// cobra package for cli tool implementation.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"bqschema/internal/config"
	"bqschema/internal/diff"
	"bqschema/internal/infer"
	"bqschema/internal/input"
	"bqschema/internal/output"
	"bqschema/internal/parallel"
	"bqschema/internal/schema"
	"bqschema/internal/validate"
	"bqschema/internal/watch"
)

// exitCodeError carries a specific process exit code alongside the
// wrapped error, for cases where "exit 1" isn't the right signal: the
// validate CLI contract (spec §6) reserves 2 for I/O/schema-load
// failure specifically, distinct from 1 for an invalid record.
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string { return e.err.Error() }
func (e *exitCodeError) Unwrap() error { return e.err }

// withExitCode wraps err, if non-nil, so main reports it with code
// instead of the default exit status of 1.
func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitCodeError{code: code, err: err}
}

type rootFlags struct {
	configPath string
}

type generateFlags struct {
	inputFormat            string
	inferMode              bool
	keepNulls              bool
	quotedValuesAreStrings bool
	sanitizeNames          bool
	preserveInputSortOrder bool
	ignoreInvalidLines     bool
	existingSchema         string
	jobs                   int
	format                 string
	outFile                string
}

type diffFlags struct {
	strict  bool
	format  string
	outFile string
}

type validateFlags struct {
	inputFormat  string
	strictTypes  bool
	allowUnknown bool
	maxErrors    int
	format       string
	outFile      string
}

type mergeFlags struct {
	format  string
	outFile string
}

type watchFlags struct {
	inputFormat            string
	inferMode              bool
	keepNulls              bool
	quotedValuesAreStrings bool
	sanitizeNames          bool
	ignoreInvalidLines     bool
	debounceMS             int
	onChange               string
	format                 string
}

func main() {
	root := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:   "bqschema",
		Short: "BigQuery table schema inference, merge, diff, and validation",
	}
	rootCmd.PersistentFlags().StringVarP(&root.configPath, "config", "c", "", "Path to a bqschema TOML configuration file")

	rootCmd.AddCommand(generateCmd(root))
	rootCmd.AddCommand(diffCmd(root))
	rootCmd.AddCommand(validateCmd(root))
	rootCmd.AddCommand(mergeCmd(root))
	rootCmd.AddCommand(watchCmd(root))

	if err := rootCmd.Execute(); err != nil {
		code := 1
		var ec *exitCodeError
		if errors.As(err, &ec) {
			code = ec.code
		}
		os.Exit(code)
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// changedOr returns the flag's value when the user set it explicitly, and
// fallback (drawn from the config file) otherwise. Flags always win over
// config per the spec's precedence rule.
func changedOr[T any](cmd *cobra.Command, name string, value T, fallback T) T {
	if cmd.Flags().Changed(name) {
		return value
	}
	return fallback
}

func generateCmd(root *rootFlags) *cobra.Command {
	flags := &generateFlags{}
	cmd := &cobra.Command{
		Use:   "generate <file>...",
		Short: "Infer a BigQuery schema from one or more NDJSON or CSV files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, root, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.inputFormat, "input-format", "i", "json", "Input record format: json or csv")
	cmd.Flags().BoolVar(&flags.inferMode, "infer-mode", false, "Relax REQUIRED/NULLABLE conflicts instead of failing them (CSV)")
	cmd.Flags().BoolVar(&flags.keepNulls, "keep-nulls", false, "Emit fields that were only ever seen as null")
	cmd.Flags().BoolVar(&flags.quotedValuesAreStrings, "quoted-strings", false, "Treat quoted scalars as STRING instead of inferring their shadow type")
	cmd.Flags().BoolVar(&flags.sanitizeNames, "sanitize-names", false, "Replace disallowed characters in field names with '_'")
	cmd.Flags().BoolVar(&flags.preserveInputSortOrder, "preserve-order", false, "Preserve first-seen field order instead of sorting alphabetically")
	cmd.Flags().BoolVar(&flags.ignoreInvalidLines, "ignore-invalid-lines", false, "Skip unparseable NDJSON lines instead of failing the run")
	cmd.Flags().StringVar(&flags.existingSchema, "existing-schema", "", "Seed inference with an existing schema document")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", 1, "Number of files to parse concurrently")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "json", "Output format: json, jsonschema, ddl, or human")
	cmd.Flags().StringVarP(&flags.outFile, "output", "o", "", "Output file for the inferred schema")

	return cmd
}

func runGenerate(cmd *cobra.Command, files []string, root *rootFlags, flags *generateFlags) error {
	cfg, err := loadConfig(root.configPath)
	if err != nil {
		return err
	}

	inputFormat := changedOr(cmd, "input-format", flags.inputFormat, cfg.Infer.InputFormat)
	inferOpts := infer.Options{
		CSV:                    strings.EqualFold(inputFormat, "csv"),
		InferMode:              changedOr(cmd, "infer-mode", flags.inferMode, cfg.Infer.InferMode),
		QuotedValuesAreStrings: changedOr(cmd, "quoted-strings", flags.quotedValuesAreStrings, cfg.Infer.QuotedValuesAreStrings),
		SanitizeNames:          changedOr(cmd, "sanitize-names", flags.sanitizeNames, cfg.Infer.SanitizeNames),
	}
	flattenOpts := schema.FlattenOptions{
		CSV:                    inferOpts.CSV,
		InferMode:              inferOpts.InferMode,
		KeepNulls:              changedOr(cmd, "keep-nulls", flags.keepNulls, cfg.Infer.KeepNulls),
		PreserveInputSortOrder: changedOr(cmd, "preserve-order", flags.preserveInputSortOrder, cfg.Infer.PreserveInputSortOrder),
	}

	sorted := append([]string(nil), files...)
	sort.Strings(sorted)

	results := parallel.MapFiles(sorted, flags.jobs, func(path string) (*schema.Mapping, error) {
		return generateFile(path, inputFormat, flags.ignoreInvalidLines, inferOpts)
	})

	walker := infer.NewWalker(inferOpts)
	merged := schema.NewMapping()
	for _, r := range results {
		if r.Err != nil {
			return fmt.Errorf("failed to parse %s: %w", r.Path, r.Err)
		}
		next, errs := walker.Merge(merged, r.Value)
		for _, e := range errs {
			printInfo(flags.format, fmt.Sprintf("%s:%d: %s", r.Path, e.Line, e.Message))
		}
		merged = next
	}

	if flags.existingSchema != "" {
		seed, err := loadExistingMapping(flags.existingSchema)
		if err != nil {
			return err
		}
		next, errs := walker.Merge(seed, merged)
		for _, e := range errs {
			printInfo(flags.format, fmt.Sprintf("%s: %s", flags.existingSchema, e.Message))
		}
		merged = next
	}

	fields := schema.Flatten(merged, flattenOpts)

	formatter, err := output.NewFormatter(flags.format)
	if err != nil {
		return err
	}
	formatted, err := formatter.FormatSchema(fields)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	return writeOutput(formatted, flags.outFile, flags.format)
}

func generateFile(path, inputFormat string, ignoreInvalidLines bool, inferOpts infer.Options) (*schema.Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	onError := func(line int, msg string) {
		fmt.Fprintf(os.Stderr, "%s:%d: %s\n", path, line, msg)
	}

	reader, err := input.New(inputFormat, f, ignoreInvalidLines, onError)
	if err != nil {
		return nil, err
	}

	walker := infer.NewWalker(inferOpts)
	m := schema.NewMapping()
	for {
		rec, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		walker.WalkRecord(rec.Line, rec.Value, m)
	}

	return m, nil
}

func loadExistingMapping(path string) (*schema.Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schema %q: %w", path, err)
	}
	defer f.Close()

	m, err := schema.LoadExisting(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema %q: %w", path, err)
	}
	return m, nil
}

func diffCmd(root *rootFlags) *cobra.Command {
	flags := &diffFlags{}
	cmd := &cobra.Command{
		Use:   "diff <old-schema.json> <new-schema.json>",
		Short: "Compare two BigQuery schema documents and classify breaking changes",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return runDiff(args[0], args[1], root, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.strict, "strict", false, "Treat every added or modified field as breaking")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "json", "Output format: json, jsonpatch, ddl, or human")
	cmd.Flags().StringVarP(&flags.outFile, "output", "o", "", "Output file for the diff")

	return cmd
}

func runDiff(oldPath, newPath string, root *rootFlags, flags *diffFlags) error {
	if _, err := loadConfig(root.configPath); err != nil {
		return err
	}

	oldMapping, err := loadExistingMapping(oldPath)
	if err != nil {
		return err
	}
	newMapping, err := loadExistingMapping(newPath)
	if err != nil {
		return err
	}

	oldFields := schema.Flatten(oldMapping, schema.FlattenOptions{})
	newFields := schema.Flatten(newMapping, schema.FlattenOptions{})

	schemaDiff := diff.Diff(oldFields, newFields, flags.strict)

	formatter, err := output.NewFormatter(flags.format)
	if err != nil {
		return err
	}
	formatted, err := formatter.FormatDiff(schemaDiff)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if err := writeOutput(formatted, flags.outFile, flags.format); err != nil {
		return err
	}

	if schemaDiff.HasBreakingChanges() {
		printInfo(flags.format, "schema diff contains breaking changes")
		os.Exit(1)
	}
	return nil
}

func validateCmd(root *rootFlags) *cobra.Command {
	flags := &validateFlags{}
	cmd := &cobra.Command{
		Use:   "validate <schema.json> <data-file>",
		Short: "Validate records in a data file against a BigQuery schema document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0], args[1], root, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.inputFormat, "input-format", "i", "json", "Input record format: json or csv")
	cmd.Flags().BoolVar(&flags.strictTypes, "strict-types", false, "Reject string representations of numbers and booleans")
	cmd.Flags().BoolVar(&flags.allowUnknown, "allow-unknown", false, "Downgrade unknown fields from an error to a warning")
	cmd.Flags().IntVar(&flags.maxErrors, "max-errors", 0, "Stop collecting errors after this many (0 = unlimited)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "json", "Output format: json or human")
	cmd.Flags().StringVarP(&flags.outFile, "output", "o", "", "Output file for the validation result")

	return cmd
}

func runValidate(cmd *cobra.Command, schemaPath, dataPath string, root *rootFlags, flags *validateFlags) error {
	cfg, err := loadConfig(root.configPath)
	if err != nil {
		return withExitCode(2, err)
	}

	mapping, err := loadExistingMapping(schemaPath)
	if err != nil {
		return withExitCode(2, err)
	}
	fields := schema.Flatten(mapping, schema.FlattenOptions{})

	maxErrors := changedOr(cmd, "max-errors", flags.maxErrors, cfg.Validate.MaxErrors)
	validator := validate.New(fields, validate.Options{
		StrictTypes:  changedOr(cmd, "strict-types", flags.strictTypes, cfg.Validate.StrictTypes),
		AllowUnknown: changedOr(cmd, "allow-unknown", flags.allowUnknown, cfg.Validate.AllowUnknown),
		MaxErrors:    maxErrors,
	})

	f, err := os.Open(dataPath)
	if err != nil {
		return withExitCode(2, fmt.Errorf("failed to open %q: %w", dataPath, err))
	}
	defer f.Close()

	reader, err := input.New(flags.inputFormat, f, false, nil)
	if err != nil {
		return withExitCode(2, err)
	}

	aggregate := &validate.Result{Valid: true}
	for {
		rec, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return withExitCode(2, fmt.Errorf("failed to read %q: %w", dataPath, err))
		}
		if maxErrors > 0 && aggregate.ErrorCount >= maxErrors {
			break
		}
		res := validator.ValidateRecord(rec.Value)
		mergeValidationResult(aggregate, res, rec.Line)
	}
	aggregate.Valid = aggregate.ErrorCount == 0

	formatter, err := output.NewFormatter(flags.format)
	if err != nil {
		return err
	}
	formatted, err := formatter.FormatValidation(aggregate)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if err := writeOutput(formatted, flags.outFile, flags.format); err != nil {
		return err
	}

	if !aggregate.Valid {
		os.Exit(1)
	}
	return nil
}

// mergeValidationResult folds one record's validation into the aggregate,
// prefixing every path with its source line so a report over many records
// stays attributable.
func mergeValidationResult(aggregate, rec *validate.Result, line int) {
	prefix := "line " + strconv.Itoa(line) + ": "
	for _, e := range rec.Errors {
		aggregate.Errors = append(aggregate.Errors, validate.Issue{Path: prefix + e.Path, Message: e.Message})
		aggregate.ErrorCount++
	}
	for _, w := range rec.Warnings {
		aggregate.Warnings = append(aggregate.Warnings, validate.Issue{Path: prefix + w.Path, Message: w.Message})
	}
}

func mergeCmd(root *rootFlags) *cobra.Command {
	flags := &mergeFlags{}
	cmd := &cobra.Command{
		Use:   "merge <schema.json>...",
		Short: "Merge two or more existing BigQuery schema documents into one",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return runMerge(args, root, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "json", "Output format: json, jsonschema, ddl, or human")
	cmd.Flags().StringVarP(&flags.outFile, "output", "o", "", "Output file for the merged schema")

	return cmd
}

// runMerge folds N already-generated schema documents into one, reusing
// the same cross-record merge machinery that reconciles field entries seen
// across records within a single generate run. This is distinct from
// generate's own multi-file fan-out, which merges freshly inferred
// per-file mappings rather than existing schema documents.
func runMerge(paths []string, root *rootFlags, flags *mergeFlags) error {
	if _, err := loadConfig(root.configPath); err != nil {
		return err
	}

	walker := infer.NewWalker(infer.Options{})
	merged := schema.NewMapping()
	for _, p := range paths {
		m, err := loadExistingMapping(p)
		if err != nil {
			return err
		}
		next, errs := walker.Merge(merged, m)
		for _, e := range errs {
			printInfo(flags.format, fmt.Sprintf("%s: %s", p, e.Message))
		}
		merged = next
	}

	fields := schema.Flatten(merged, schema.FlattenOptions{})

	formatter, err := output.NewFormatter(flags.format)
	if err != nil {
		return err
	}
	formatted, err := formatter.FormatSchema(fields)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	return writeOutput(formatted, flags.outFile, flags.format)
}

func watchCmd(root *rootFlags) *cobra.Command {
	flags := &watchFlags{}
	cmd := &cobra.Command{
		Use:   "watch <file>...",
		Short: "Watch input files and re-emit a merged schema on every change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, root, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.inputFormat, "input-format", "i", "json", "Input record format: json or csv")
	cmd.Flags().BoolVar(&flags.inferMode, "infer-mode", false, "Relax REQUIRED/NULLABLE conflicts instead of failing them (CSV)")
	cmd.Flags().BoolVar(&flags.keepNulls, "keep-nulls", false, "Emit fields that were only ever seen as null")
	cmd.Flags().BoolVar(&flags.quotedValuesAreStrings, "quoted-strings", false, "Treat quoted scalars as STRING instead of inferring their shadow type")
	cmd.Flags().BoolVar(&flags.sanitizeNames, "sanitize-names", false, "Replace disallowed characters in field names with '_'")
	cmd.Flags().BoolVar(&flags.ignoreInvalidLines, "ignore-invalid-lines", false, "Skip unparseable NDJSON lines instead of failing the run")
	cmd.Flags().IntVar(&flags.debounceMS, "debounce", 0, "Debounce window in milliseconds (0 uses the config/default)")
	cmd.Flags().StringVar(&flags.onChange, "on-change", "", "Shell command to run after each re-emitted schema")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "json", "Output format: json, ddl, or human")

	return cmd
}

func runWatch(cmd *cobra.Command, files []string, root *rootFlags, flags *watchFlags) error {
	cfg, err := loadConfig(root.configPath)
	if err != nil {
		return err
	}

	inputFormat := changedOr(cmd, "input-format", flags.inputFormat, cfg.Infer.InputFormat)
	debounceMS := changedOr(cmd, "debounce", flags.debounceMS, cfg.Watch.DebounceMS)
	onChange := changedOr(cmd, "on-change", flags.onChange, cfg.Watch.OnChange)

	formatter, err := output.NewFormatter(flags.format)
	if err != nil {
		return err
	}

	opts := watch.Options{
		InputFormat:        input.Format(strings.ToLower(inputFormat)),
		IgnoreInvalidLines: changedOr(cmd, "ignore-invalid-lines", flags.ignoreInvalidLines, false),
		InferOpts: infer.Options{
			CSV:                    strings.EqualFold(inputFormat, "csv"),
			InferMode:              changedOr(cmd, "infer-mode", flags.inferMode, cfg.Infer.InferMode),
			QuotedValuesAreStrings: changedOr(cmd, "quoted-strings", flags.quotedValuesAreStrings, cfg.Infer.QuotedValuesAreStrings),
			SanitizeNames:          changedOr(cmd, "sanitize-names", flags.sanitizeNames, cfg.Infer.SanitizeNames),
		},
		FlattenOpts: schema.FlattenOptions{
			KeepNulls: changedOr(cmd, "keep-nulls", flags.keepNulls, cfg.Infer.KeepNulls),
		},
		Debounce: time.Duration(debounceMS) * time.Millisecond,
		OnChange: onChange,
	}

	onDiff := func(prev, next []*schema.OutputField) {
		d := diff.Diff(prev, next, false)
		if d.IsEmpty() {
			return
		}
		formatted, err := formatter.FormatDiff(d)
		if err != nil {
			fmt.Fprintln(os.Stderr, "failed to format diff:", err)
			return
		}
		fmt.Println(formatted)
	}
	errLog := func(line int, msg string) {
		fmt.Fprintf(os.Stderr, "line %d: %s\n", line, msg)
	}

	controller := watch.NewController(files, opts, onDiff, errLog)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return controller.Run(ctx)
}

func printInfo(format, msg string) {
	if strings.EqualFold(strings.TrimSpace(format), string(output.FormatJSON)) {
		_, _ = fmt.Fprintln(os.Stderr, msg)
		return
	}
	fmt.Println(msg)
}

func writeOutput(content, outFile, format string) error {
	if outFile == "" {
		fmt.Println(content)
		return nil
	}

	if err := os.WriteFile(outFile, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	printInfo(format, fmt.Sprintf("output saved to %s", outFile))
	return nil
}
