/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/suparena/entitymodel"
)

func init() {
	getCmd := &cobra.Command{
		Use:   "get <hash> [range]",
		Short: "Print one record",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runGet,
	}

	putCmd := &cobra.Command{
		Use:   "put [json]",
		Short: "Create or update a record",
		Long:  "Create or update a record from a JSON object. The object can be a positional arg or piped via stdin.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPut,
	}
	putCmd.Flags().Bool("generate-id", false, "Set the hash key to a random UUID when the object has none")

	deleteCmd := &cobra.Command{
		Use:   "delete <hash> [range]",
		Short: "Delete a record",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runDelete,
	}

	importCmd := &cobra.Command{
		Use:   "import <file.jsonl>",
		Short: "Import records from a JSON lines file",
		Long:  "Import records from a file holding one JSON object per line. Use - to read stdin. Records are written in batches without validation.",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}
	importCmd.Flags().Bool("generate-id", false, "Set the hash key to a random UUID on objects that have none")

	batchGetCmd := &cobra.Command{
		Use:   "batch-get <hash>...",
		Short: "Print several records of a hash-keyed table",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runBatchGet,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), entitymodel.GetVersionInfo())
		},
	}

	rootCmd.AddCommand(getCmd, putCmd, deleteCmd, importCmd, batchGetCmd, versionCmd)
}

func keyArgs(args []string) (any, []any) {
	var rangeValue []any
	if len(args) > 1 {
		rangeValue = append(rangeValue, args[1])
	}
	return args[0], rangeValue
}

func runGet(cmd *cobra.Command, args []string) error {
	typ, err := openType(cmd.Context())
	if err != nil {
		return err
	}
	hash, rangeValue := keyArgs(args)
	r, err := typ.Find(cmd.Context(), hash, rangeValue...)
	if err != nil {
		return err
	}
	values, err := recordJSON(r)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), values)
}

func runPut(cmd *cobra.Command, args []string) error {
	generateID, _ := cmd.Flags().GetBool("generate-id")

	var data []byte
	if len(args) > 0 {
		data = []byte(args[0])
	} else {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		data = b
	}
	attrs, err := decodeAttributes(data)
	if err != nil {
		return err
	}

	typ, err := openType(cmd.Context())
	if err != nil {
		return err
	}
	if generateID {
		assignID(typ, attrs)
	}

	rangeValue := []any{}
	if typ.RangeKey() != "" {
		rangeValue = append(rangeValue, attrs[typ.RangeKey()])
	}
	r, err := typ.FindOrNew(cmd.Context(), attrs[typ.HashKey()], rangeValue...)
	if err != nil {
		return err
	}
	if err := r.AssignAttributes(attrs); err != nil {
		return err
	}
	if err := r.SaveOrError(cmd.Context()); err != nil {
		return err
	}

	values, err := recordJSON(r)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), values)
}

// assignID sets the hash key to a random UUID unless attrs already holds one.
func assignID(typ *entitymodel.Type, attrs map[string]any) {
	if v, ok := attrs[typ.HashKey()]; !ok || v == nil || v == "" {
		attrs[typ.HashKey()] = uuid.NewString()
	}
}

func runDelete(cmd *cobra.Command, args []string) error {
	typ, err := openType(cmd.Context())
	if err != nil {
		return err
	}
	hash, rangeValue := keyArgs(args)
	r, err := typ.Find(cmd.Context(), hash, rangeValue...)
	if err != nil {
		return err
	}
	if err := r.Delete(cmd.Context()); err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), map[string]any{"ok": true, "deleted": r.Key().String()})
}

func runImport(cmd *cobra.Command, args []string) error {
	generateID, _ := cmd.Flags().GetBool("generate-id")

	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	typ, err := openType(cmd.Context())
	if err != nil {
		return err
	}
	records, err := readRecords(typ, in, generateID)
	if err != nil {
		return err
	}
	if err := typ.Import(cmd.Context(), records); err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), map[string]any{"ok": true, "imported": len(records)})
}

// readRecords builds one new record per non-blank line of in.
func readRecords(typ *entitymodel.Type, in io.Reader, generateID bool) ([]*entitymodel.Record, error) {
	var records []*entitymodel.Record
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		attrs, err := decodeAttributes([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if generateID {
			assignID(typ, attrs)
		}
		r, err := typ.New(attrs)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func runBatchGet(cmd *cobra.Command, args []string) error {
	typ, err := openType(cmd.Context())
	if err != nil {
		return err
	}
	hashes := make([]any, len(args))
	for i, a := range args {
		hashes[i] = a
	}
	records, err := typ.BatchFindByHash(cmd.Context(), hashes...)
	if err != nil {
		return err
	}
	return printRecords(cmd.OutOrStdout(), records)
}
