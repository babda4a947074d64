package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/5w1tchy/textbooks-api/internal/service"
)

func newCoursesCmd(a *app) *cobra.Command {
	courses := &cobra.Command{
		Use:   "courses",
		Short: "Course catalogue commands",
	}
	courses.AddCommand(&cobra.Command{
		Use:   "import [file.json]",
		Short: "Import courses from a JSON array of {department, number, title}",
		Long: `Import reads a JSON array of courses and creates every course whose
department and number are not in the catalogue yet. Existing courses are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readCourses(args[0])
			if err != nil {
				return err
			}

			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close(cmd.Context())

			res, err := a.services(store, nil, nil, nil).Courses.Import(cmd.Context(), in)
			fmt.Fprintf(cmd.OutOrStdout(), "created %d, skipped %d\n", res.Created, res.Skipped)
			return err
		},
	})
	return courses
}

func readCourses(path string) ([]service.CourseInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var in []service.CourseInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return in, nil
}
