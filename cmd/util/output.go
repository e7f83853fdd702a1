package util

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/learningorchestra/orchestra/pkg/client"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Output returns the output format selected by the persistent output flag,
// text when the command is used on its own.
func Output(cmd *cobra.Command) string {
	if f := cmd.Flags().Lookup("output"); f != nil {
		return strings.ToLower(f.Value.String())
	}
	return OutputText
}

func PrintEnvelope(cmd *cobra.Command, e *client.Envelope) error {
	switch format := Output(cmd); format {
	case OutputJSON:
		return printJSON(cmd.OutOrStdout(), e)
	case OutputYAML:
		return printYAML(cmd.OutOrStdout(), e)
	case OutputText:
		if message, ok := e.Message(); ok {
			cmd.Println(message)
			return nil
		}
		if records, err := e.Records(); err == nil && isMetadata(records) {
			printRecords(cmd.OutOrStdout(), records)
			return nil
		}
		return printJSON(cmd.OutOrStdout(), e)
	default:
		return fmt.Errorf("unrecognized output format: %s", format)
	}
}

func PrintOutcome(cmd *cobra.Command, o *client.Outcome) error {
	if o.Pending() && Output(cmd) == OutputText {
		cmd.Printf("Pending: %s\n", o.Handle)
		return nil
	}

	return PrintEnvelope(cmd, o.Envelope)
}

func printJSON(w io.Writer, e *client.Envelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

func printYAML(w io.Writer, e *client.Envelope) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}

	var doc any
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// isMetadata reports whether every record looks like a metadata record
// rather than dataset content.
func isMetadata(records []client.Record) bool {
	if len(records) == 0 {
		return false
	}
	for _, r := range records {
		if r.DatasetName == "" || r.Finished == "" {
			return false
		}
	}
	return true
}

func printRecords(w io.Writer, records []client.Record) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	formatted := func(row ...any) {
		_, _ = fmt.Fprintf(tw, "%v\t%v\t%v\t%v\n", row...)
	}

	formatted(
		"NAME",
		"TYPE",
		"FINISHED",
		"CREATED",
	)

	for _, r := range records {
		formatted(
			r.DatasetName,
			r.Type,
			r.Finished,
			r.TimeCreated,
		)
	}

	_ = tw.Flush()
}
