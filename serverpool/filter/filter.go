// Package filter narrows an endpoint sequence by location and address
// patterns. The criteria are conjunctive: an endpoint must pass every
// configured predicate to survive.
package filter

import (
	"fmt"
	"iter"
	"regexp"
	"strings"

	"github.com/glls/rankPrivateVPNServers/serverpool/model"
)

// Options are the user-facing filter criteria. Empty fields do not filter.
type Options struct {
	// Countries match the endpoint's country name or code,
	// case-insensitively, any one of them sufficing.
	Countries []string
	// Include keeps endpoints whose URL matches at least one pattern.
	Include []string
	// Exclude drops endpoints whose URL matches any pattern.
	Exclude []string
}

// Filter is a compiled set of criteria.
type Filter struct {
	countries map[string]struct{}
	include   []*regexp.Regexp
	exclude   []*regexp.Regexp
}

// New compiles the criteria. Patterns are unanchored regular expressions; a
// bad pattern fails construction rather than every later match.
func New(opts Options) (*Filter, error) {
	f := &Filter{}

	if len(opts.Countries) > 0 {
		f.countries = make(map[string]struct{}, len(opts.Countries))
		for _, c := range opts.Countries {
			f.countries[strings.ToUpper(c)] = struct{}{}
		}
	}

	for _, pattern := range opts.Include {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", pattern, err)
		}
		f.include = append(f.include, re)
	}
	for _, pattern := range opts.Exclude {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		f.exclude = append(f.exclude, re)
	}

	return f, nil
}

// Match reports whether a single endpoint passes all criteria.
func (f *Filter) Match(e *model.Endpoint) bool {
	if f.countries != nil {
		_, byName := f.countries[strings.ToUpper(e.Country)]
		_, byCode := f.countries[strings.ToUpper(e.CountryCode)]
		if !byName && !byCode {
			return false
		}
	}

	if len(f.include) > 0 {
		matched := false
		for _, re := range f.include {
			if re.MatchString(e.URL) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, re := range f.exclude {
		if re.MatchString(e.URL) {
			return false
		}
	}

	return true
}

// Apply returns a lazy sequence of the endpoints passing the filter. The
// sequence is meant for a single pass; to walk the data again, reapply the
// filter to the original endpoints.
func (f *Filter) Apply(src iter.Seq[*model.Endpoint]) iter.Seq[*model.Endpoint] {
	return func(yield func(*model.Endpoint) bool) {
		for e := range src {
			if !f.Match(e) {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// All adapts an endpoint slice into a sequence for Apply.
func All(endpoints []*model.Endpoint) iter.Seq[*model.Endpoint] {
	return func(yield func(*model.Endpoint) bool) {
		for _, e := range endpoints {
			if !yield(e) {
				return
			}
		}
	}
}

// Collect drains a sequence into a slice.
func Collect(seq iter.Seq[*model.Endpoint]) []*model.Endpoint {
	var endpoints []*model.Endpoint
	for e := range seq {
		endpoints = append(endpoints, e)
	}
	return endpoints
}
