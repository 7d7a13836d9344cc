package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	intercept "github.com/glimte/mmate-intercept"
	"github.com/glimte/mmate-intercept/binding"
	"github.com/glimte/mmate-intercept/config"
	"github.com/glimte/mmate-intercept/contracts"
	"github.com/glimte/mmate-intercept/journal"
)

type demoOptions struct {
	timestamp bool
	limit     int64
	warriors  int
}

type employee struct {
	Name string
}

type student struct {
	RollNo int
}

type warrior struct {
	Name string
}

func newEmployee(ctx context.Context, args ...interface{}) (*employee, error) {
	name, _ := args[0].(string)
	return &employee{Name: name}, nil
}

func newStudent(ctx context.Context, args ...interface{}) (*student, error) {
	rollNo, ok := args[0].(int)
	if !ok {
		return nil, fmt.Errorf("student expects an int roll number, got %T", args[0])
	}
	return &student{RollNo: rollNo}, nil
}

func newWarrior(ctx context.Context, args ...interface{}) (*warrior, error) {
	name, _ := args[0].(string)
	return &warrior{Name: name}, nil
}

func add(ctx context.Context, args ...interface{}) (int, error) {
	a, okA := args[0].(int)
	b, okB := args[1].(int)
	if !okA || !okB {
		return 0, fmt.Errorf("add expects two ints, got %T and %T", args[0], args[1])
	}
	return a + b, nil
}

// chainFor returns the declared chain of a target or the fallback when the
// declarations say nothing about it
func chainFor(declared []contracts.InterceptorSpec, fallback ...contracts.InterceptorSpec) []contracts.InterceptorSpec {
	if len(declared) > 0 {
		return declared
	}
	return fallback
}

func runDemo(ctx context.Context, rt *intercept.Runtime, d *config.Declarations, opts demoOptions, out io.Writer) error {
	registry := rt.Registry()

	// Employee and Student: Timestamp outside Singleton
	createEmployee, err := binding.AttachConstruction(registry, "Employee", newEmployee,
		chainFor(d.Construction("Employee"), contracts.Singleton(), contracts.Timestamp(opts.timestamp))...)
	if err != nil {
		return err
	}
	createStudent, err := binding.AttachConstruction(registry, "Student", newStudent,
		chainFor(d.Construction("Student"), contracts.Singleton(), contracts.Timestamp(opts.timestamp))...)
	if err != nil {
		return err
	}

	e1, err := createEmployee(ctx, "Jane")
	if err != nil {
		return err
	}
	e2, err := createEmployee(ctx, "Joe")
	if err != nil {
		return err
	}
	s1, err := createStudent(ctx, 1)
	if err != nil {
		return err
	}
	s2, err := createStudent(ctx, 2)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "employees: %s, %s (same instance: %t)\n", e1.Name, e2.Name, e1 == e2)
	fmt.Fprintf(out, "students: %d, %d (same instance: %t)\n", s1.RollNo, s2.RollNo, s1 == s2)

	// Warrior: instance limit
	createWarrior, err := binding.AttachConstruction(registry, "Warrior", newWarrior,
		chainFor(d.Construction("Warrior"), contracts.InstanceLimit(opts.limit))...)
	if err != nil {
		return err
	}
	for i := 1; i <= opts.warriors; i++ {
		w, err := createWarrior(ctx, fmt.Sprintf("Warrior%d", i))
		if err != nil {
			if !contracts.IsConstructionDenied(err) {
				return err
			}
			fmt.Fprintf(out, "warrior %d: %v\n", i, err)
			continue
		}
		fmt.Fprintf(out, "warrior %d: %s\n", i, w.Name)
	}

	// Math.add: memoized
	addFn, err := binding.WrapMethodChain(registry, "Math.add", add,
		chainFor(d.Method("Math", "add"), contracts.Memoize(), contracts.Logging())...)
	if err != nil {
		return err
	}
	for i := 0; i < 2; i++ {
		sum, err := addFn(ctx, 2, 3)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "add(2, 3) = %d\n", sum)
	}

	// Person.name: capitalized and change-logged
	name, err := binding.AttachAccessor(registry, "Person.name", "",
		chainFor(d.Field("Person", "name"), contracts.Capitalize(), contracts.ChangeLog())...)
	if err != nil {
		return fmt.Errorf("person name: %w", err)
	}
	name.Set("Prince")
	name.Set("king")
	fmt.Fprintf(out, "person name: %s\n", name.Get())

	return printJournal(ctx, rt.Journal(), out)
}

func printJournal(ctx context.Context, j *journal.InMemoryJournal, out io.Writer) error {
	stats, err := j.GetStats(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%-22s %s\n", "Entry Type", "Count")
	fmt.Fprintln(out, strings.Repeat("-", 30))

	types := make([]string, 0, len(stats.EntriesByType))
	for entryType := range stats.EntriesByType {
		types = append(types, string(entryType))
	}
	sort.Strings(types)

	for _, entryType := range types {
		fmt.Fprintf(out, "%-22s %d\n", entryType, stats.EntriesByType[journal.EntryType(entryType)])
	}
	fmt.Fprintf(out, "%-22s %d\n", "total", stats.TotalEntries)
	return nil
}

func specList(specs []contracts.InterceptorSpec) string {
	names := make([]string, len(specs))
	for i, spec := range specs {
		names[i] = spec.String()
	}
	return strings.Join(names, " -> ")
}

func sortedKeys(m map[string][]contracts.InterceptorSpec) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
