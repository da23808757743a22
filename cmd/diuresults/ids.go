package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"diuresults/pkg/ui"

	"github.com/spf13/cobra"
)

var saveIDs bool

// idsCmd represents the ids command
var idsCmd = &cobra.Command{
	Use:   "ids",
	Short: "Print the semester and student ids a run would cover",
	Long: `Expand the configured semester and student ranges and print the ids in
the order the fetch stage visits them. With --save the student ids are also
written to <student_list_file> as a JSON array.`,
	Example: `  # Preview a range
  diuresults ids --semester-start 231 --semester-end 242 --student-start 1 --student-end 5

  # Save the student list
  diuresults ids --save`,
	Args: cobra.NoArgs,
	RunE: runIDs,
}

func init() {
	rootCmd.AddCommand(idsCmd)
	addRangeFlags(idsCmd)
	idsCmd.Flags().BoolVar(&saveIDs, "save", false, "write the student ids to the student list file")
}

func runIDs(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	semesters := a.cfg.SemesterIDs()
	students := a.cfg.StudentIDs()

	ui.PrintInfo(fmt.Sprintf("Semesters (%d)", len(semesters)), strings.Join(semesters, " "))
	ui.PrintInfo(fmt.Sprintf("Students (%d)", len(students)), strings.Join(students, " "))

	if !saveIDs {
		return nil
	}

	st, key, err := a.openFile(a.cfg.Storage.StudentListFile)
	if err != nil {
		return err
	}
	data, err := encodeIDs(students)
	if err != nil {
		return err
	}
	if err := st.Put(key, data); err != nil {
		return fmt.Errorf("failed to save student ids: %w", err)
	}
	ui.PrintSuccess(fmt.Sprintf("Saved %d student ids to %s", len(students), a.cfg.Storage.StudentListFile))
	return nil
}

// encodeIDs renders ids as an indented JSON array
func encodeIDs(ids []string) ([]byte, error) {
	if ids == nil {
		ids = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	if err := enc.Encode(ids); err != nil {
		return nil, fmt.Errorf("failed to encode student ids: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
