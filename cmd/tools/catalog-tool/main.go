// cmd/tools/catalog-tool/main.go
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"mergington-activities/pkg/catalog"
)

const defaultPath = "configs/activities.json"

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}
	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(command string, args []string, out io.Writer) error {
	switch command {
	case "init":
		cmd := flag.NewFlagSet("init", flag.ContinueOnError)
		path := cmd.String("path", defaultPath, "Path to catalog file")
		force := cmd.Bool("force", false, "Overwrite an existing file")
		if err := cmd.Parse(args); err != nil {
			return err
		}
		if err := initCatalog(*path, *force); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote default catalog to %s\n", *path)

	case "add":
		cmd := flag.NewFlagSet("add", flag.ContinueOnError)
		path := cmd.String("path", defaultPath, "Path to catalog file")
		name := cmd.String("name", "", "Activity name (e.g., Robotics Club)")
		description := cmd.String("description", "", "Description")
		schedule := cmd.String("schedule", "", "Schedule (e.g., Tuesdays, 3:30 PM - 5:00 PM)")
		maxParticipants := cmd.Int("max", 0, "Maximum participants")
		participants := cmd.String("participants", "", "Comma separated initial roster")
		if err := cmd.Parse(args); err != nil {
			return err
		}
		if *name == "" || *description == "" || *schedule == "" || *maxParticipants <= 0 {
			cmd.Usage()
			return fmt.Errorf("name, description, schedule and a positive max are required for add")
		}
		spec := catalog.ActivitySpec{
			Name:            *name,
			Description:     *description,
			Schedule:        *schedule,
			MaxParticipants: *maxParticipants,
			Participants:    splitList(*participants),
		}
		if err := addActivity(*path, spec); err != nil {
			return fmt.Errorf("adding activity: %w", err)
		}
		fmt.Fprintf(out, "Added activity: %s\n", *name)

	case "update":
		cmd := flag.NewFlagSet("update", flag.ContinueOnError)
		path := cmd.String("path", defaultPath, "Path to catalog file")
		name := cmd.String("name", "", "Activity name to update")
		field := cmd.String("field", "", "Field to update (description, schedule, max_participants)")
		value := cmd.String("value", "", "New value for the field")
		if err := cmd.Parse(args); err != nil {
			return err
		}
		if *name == "" || *field == "" || *value == "" {
			cmd.Usage()
			return fmt.Errorf("name, field, and value are required for update")
		}
		if err := updateActivity(*path, *name, *field, *value); err != nil {
			return fmt.Errorf("updating activity: %w", err)
		}
		fmt.Fprintf(out, "Updated activity %s, field %s to %s\n", *name, *field, *value)

	case "validate":
		cmd := flag.NewFlagSet("validate", flag.ContinueOnError)
		path := cmd.String("path", defaultPath, "Path to catalog file")
		if err := cmd.Parse(args); err != nil {
			return err
		}
		cat, err := catalog.LoadCatalog(*path)
		if err != nil {
			return fmt.Errorf("catalog validation failed: %w", err)
		}
		fmt.Fprintf(out, "Catalog validation passed. Found %d activities.\n", len(cat.Activities))

	case "list":
		cmd := flag.NewFlagSet("list", flag.ContinueOnError)
		path := cmd.String("path", "", "Path to catalog file (default: built-in seed)")
		if err := cmd.Parse(args); err != nil {
			return err
		}
		cat, err := load(*path)
		if err != nil {
			return err
		}
		listActivities(cat, out)

	default:
		help()
	}
	return nil
}

func load(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadCatalog(path)
}

func initCatalog(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", path)
	}
	cat, err := catalog.Default()
	if err != nil {
		return err
	}
	cat.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	return saveCatalog(cat, path)
}

func addActivity(path string, spec catalog.ActivitySpec) error {
	cat, err := catalog.LoadCatalog(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		cat = &catalog.Catalog{Version: "1.0.0", Activities: []catalog.ActivitySpec{}}
	}

	if err := cat.Add(spec); err != nil {
		return err
	}
	return saveCatalog(cat, path)
}

func updateActivity(path, name, field, value string) error {
	cat, err := catalog.LoadCatalog(path)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	spec, ok := cat.Find(name)
	if !ok {
		return fmt.Errorf("activity %q not found", name)
	}

	switch field {
	case "description":
		spec.Description = value
	case "schedule":
		spec.Schedule = value
	case "max_participants":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid max_participants value: %w", err)
		}
		spec.MaxParticipants = n
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	if err := cat.Validate(); err != nil {
		return err
	}
	cat.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	return saveCatalog(cat, path)
}

func listActivities(cat *catalog.Catalog, out io.Writer) {
	specs := append([]catalog.ActivitySpec(nil), cat.Activities...)
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })

	for _, s := range specs {
		fmt.Fprintf(out, "%-20s %2d/%-3d %s\n", s.Name, len(s.Participants), s.MaxParticipants, s.Schedule)
	}
}

// saveCatalog creates the parent directory before writing.
func saveCatalog(cat *catalog.Catalog, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := cat.Save(path); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func help() {
	fmt.Print(`
Usage: catalog-tool <command> [flags]

Commands:
  init      Write the built-in seed catalog to a file
  add       Add a new activity to the catalog
  update    Update an existing activity's field
  validate  Validate the catalog file
  list      Print activities with roster counts
  help      Show this help message

Examples:
  catalog-tool init -path configs/activities.json
  catalog-tool add -name "Robotics Club" -description "Build and program robots" -schedule "Tuesdays, 3:30 PM - 5:00 PM" -max 14
  catalog-tool update -name "Chess Club" -field max_participants -value 14
  catalog-tool validate -path configs/activities.json

Use 'catalog-tool <command> -h' for more information about a command.
` + "\n")
}
