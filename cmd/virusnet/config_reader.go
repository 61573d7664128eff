package main

import (
	"fmt"
	"io"
	"reflect"

	model "github.com/mattijsgietman/Virus-on-a-network/pkg/datamodel"
	"github.com/mattijsgietman/Virus-on-a-network/pkg/epidemic"
)

// EnumerateStructFields generates a help message that enumerates the fields of a struct.
func EnumerateStructFields(structName string, v interface{}) string {
	t := reflect.TypeOf(v)
	if t.Kind() != reflect.Struct {
		return ""
	}

	message := fmt.Sprintf("Fields of %s:\n", structName)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			message += fmt.Sprintf("%s (inline)\n", field.Name)
			continue
		}
		fieldName := field.Name
		fieldTag := field.Tag.Get("json")
		message += fmt.Sprintf("%s (%s) %s\n", fieldName, fieldTag, field.Type)
	}

	return message
}

// HelpFunc describes every section of the configuration file.
func HelpFunc(w io.Writer) {
	sections := []struct {
		name string
		v    interface{}
	}{
		{"Config", model.Config{}},
		{"TopLevelConfig", model.TopLevelConfig{}},
		{"WebServerConfig", model.WebServerConfig{}},
		{"SimulationConfig", model.SimulationConfig{}},
		{"Params", epidemic.Params{}},
		{"BatchConfig", model.BatchConfig{}},
		{"CLIConfig", model.CLIConfig{}},
	}
	for _, s := range sections {
		fmt.Fprintln(w, EnumerateStructFields(s.name, s.v))
	}
}
