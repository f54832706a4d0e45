package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/survival-kitchen/pkg/catalog"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <catalog.yaml|catalog.json>...\n", os.Args[0])
		os.Exit(1)
	}

	failed := 0
	for _, filename := range os.Args[1:] {
		validator := &CatalogValidator{}
		if err := validator.validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed++
			continue
		}
		fmt.Printf("%s is valid!\n", filename)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

type CatalogValidator struct {
	errors []string
}

func (v *CatalogValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	ext := strings.ToLower(filepath.Ext(baseName))
	if ext != ".yaml" && ext != ".yml" && ext != ".json" {
		return fmt.Errorf("catalog file must have a .yaml, .yml or .json extension: %s", baseName)
	}
	if !isValidFilename(strings.TrimSuffix(baseName, filepath.Ext(baseName))) {
		return fmt.Errorf("catalog filename '%s' must be lowercase snake_case (e.g., winter_term.yaml)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil

	c, err := catalog.Decode(data, catalog.FormatFor(filename), true)
	if err != nil {
		return fmt.Errorf("file %s failed strict decoding: %w", filename, err)
	}

	var verr *catalog.ValidationError
	if err := c.Validate(); errors.As(err, &verr) {
		v.errors = append(v.errors, verr.Problems...)
	} else if err != nil {
		v.addError(err.Error())
	}
	v.validateIDs(c)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

// validateIDs checks event and option ids, which the API and console type.
func (v *CatalogValidator) validateIDs(c *catalog.Catalog) {
	check := func(ev catalog.Event) {
		v.validateIDFormat("event id", ev.ID)
		for _, o := range ev.Options {
			v.validateIDFormat(fmt.Sprintf("option id in %s", ev.ID), o.ID)
		}
	}
	for _, ev := range c.RandomEvents {
		check(ev)
	}
	for _, ce := range c.ConditionalEvents {
		check(ce.Event)
	}
	for _, fe := range c.FixedEvents {
		check(fe.Event)
	}
}

func (v *CatalogValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}
	if !validIDRegex.MatchString(id) {
		v.addError(fmt.Sprintf("%s '%s' must be lowercase snake_case", fieldName, id))
	}
}

func (v *CatalogValidator) addError(msg string) {
	v.errors = append(v.errors, msg)
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidFilename(name string) bool {
	return validIDRegex.MatchString(name)
}
