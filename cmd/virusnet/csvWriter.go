package main

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"text/tabwriter"
	"time"

	model "github.com/mattijsgietman/Virus-on-a-network/pkg/datamodel"
)

var (
	nullTimeType = reflect.TypeOf(sql.NullTime{})
	timeType     = reflect.TypeOf(time.Time{})
)

// exportCSV writes one table, filtered to an experiment where that applies,
// to the named file ("-" for standard output).
func exportCSV(table, experiment, output string) error {
	var w io.Writer = os.Stdout
	toFile := output != "" && output != "-"
	if toFile {
		file, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("unable to create csv file for %s: %v", table, err)
		}
		defer file.Close()
		w = file
	}

	if err := writeTable(w, table, experiment); err != nil {
		return err
	}
	if toFile {
		log.Infof("CSV exported successfully to %s", output)
	}
	return nil
}

func writeTable(w io.Writer, table, experiment string) error {
	switch table {
	case "experiments":
		rows, err := model.GetExperiments()
		if err != nil {
			return fmt.Errorf("error querying table %s: %v", table, err)
		}
		return writeCSV(w, rows)
	case "runs":
		rows, err := model.GetRunResults(experiment)
		if err != nil {
			return fmt.Errorf("error querying table %s: %v", table, err)
		}
		return writeCSV(w, rows)
	case "steps":
		rows, err := model.GetStepRecords(experiment)
		if err != nil {
			return fmt.Errorf("error querying table %s: %v", table, err)
		}
		return writeCSV(w, rows)
	default:
		return fmt.Errorf("unknown table %q: want experiments, runs or steps", table)
	}
}

// writeCSV writes a header of field names and one line per row
func writeCSV[T any](w io.Writer, rows []T) error {
	writer := csv.NewWriter(w)

	var zero T
	if err := writer.Write(fieldNames(zero)); err != nil {
		return fmt.Errorf("error writing header: %v", err)
	}
	for _, r := range rows {
		row, err := convertToString(r)
		if err != nil {
			return fmt.Errorf("error: %v", err)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("error writing row: %v", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func convertToString(obj interface{}) ([]string, error) {
	v := reflect.ValueOf(obj)
	if v.Kind() == reflect.Ptr {
		v = v.Elem() // Dereference if it's a pointer
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected a struct, got %s", v.Kind())
	}

	result := make([]string, 0, v.NumField())
	for i := 0; i < v.NumField(); i++ {
		result = append(result, formatField(v.Field(i)))
	}
	return result, nil
}

func formatField(field reflect.Value) string {
	switch field.Type() {
	case nullTimeType:
		nt := field.Interface().(sql.NullTime)
		if !nt.Valid {
			return ""
		}
		return nt.Time.UTC().Format(time.RFC3339)
	case timeType:
		return field.Interface().(time.Time).UTC().Format(time.RFC3339)
	}

	switch field.Kind() {
	case reflect.String:
		return field.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(field.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(field.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(field.Float(), 'g', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(field.Bool())
	default:
		return fmt.Sprintf("%v", field.Interface()) // Generic fallback
	}
}

func fieldNames(obj interface{}) []string {
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		names = append(names, t.Field(i).Name)
	}
	return names
}

// listExperiments prints the stored experiments as a table
func listExperiments(w io.Writer) error {
	experiments, err := model.GetExperiments()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EXPERIMENT\tKIND\tINVESTIGATOR\tRUNS\tSTARTED\tFINISHED")
	for _, e := range experiments {
		fmt.Fprintf(tw, "%v\t%v\t%v\t%v\t%v\t%v\n", e.ExperimentName, e.Kind, e.Investigator, e.Runs,
			formatField(reflect.ValueOf(e.DateStarted)), formatField(reflect.ValueOf(e.DateFinished)))
	}
	return tw.Flush()
}
