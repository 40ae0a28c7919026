package filter

import (
	"testing"

	"github.com/glls/rankPrivateVPNServers/serverpool/model"
)

func sampleEndpoints() []*model.Endpoint {
	return []*model.Endpoint{
		{Country: "US", CountryCode: "US", URL: "us-nyc.pvdata.host"},
		{Country: "Canada", CountryCode: "CA", URL: "ca-tor.pvdata.host"},
		{Country: "Sweden", CountryCode: "SE", URL: "se-sto.pvdata.host"},
		{Country: "Germany", CountryCode: "DE", URL: "de-fra.pvdata.host"},
	}
}

func urls(endpoints []*model.Endpoint) []string {
	var out []string
	for _, e := range endpoints {
		out = append(out, e.URL)
	}
	return out
}

func mustNew(t *testing.T, opts Options) *Filter {
	t.Helper()
	f, err := New(opts)
	if err != nil {
		t.Fatalf("New(%+v) returned an error: %v", opts, err)
	}
	return f
}

func TestFilter_CountryMatchesNameOrCodeCaseInsensitively(t *testing.T) {
	f := mustNew(t, Options{Countries: []string{"US", "ca"}})
	got := Collect(f.Apply(All(sampleEndpoints())))

	want := []string{"us-nyc.pvdata.host", "ca-tor.pvdata.host"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, urls(got))
	}
	for i := range want {
		if got[i].URL != want[i] {
			t.Errorf("expected %v, got %v", want, urls(got))
			break
		}
	}
}

func TestFilter_IncludeIsAnyMatch(t *testing.T) {
	f := mustNew(t, Options{Include: []string{"^se-", "fra"}})
	got := Collect(f.Apply(All(sampleEndpoints())))
	if len(got) != 2 || got[0].URL != "se-sto.pvdata.host" || got[1].URL != "de-fra.pvdata.host" {
		t.Errorf("unexpected include result: %v", urls(got))
	}
}

func TestFilter_ExcludeDropsAnyMatch(t *testing.T) {
	f := mustNew(t, Options{Exclude: []string{"nyc", "tor"}})
	got := Collect(f.Apply(All(sampleEndpoints())))
	if len(got) != 2 || got[0].URL != "se-sto.pvdata.host" || got[1].URL != "de-fra.pvdata.host" {
		t.Errorf("unexpected exclude result: %v", urls(got))
	}
}

func TestFilter_CriteriaAreConjunctive(t *testing.T) {
	f := mustNew(t, Options{
		Countries: []string{"sweden", "germany"},
		Include:   []string{"pvdata"},
		Exclude:   []string{"fra"},
	})
	got := Collect(f.Apply(All(sampleEndpoints())))
	if len(got) != 1 || got[0].URL != "se-sto.pvdata.host" {
		t.Errorf("expected only the Stockholm server, got %v", urls(got))
	}
}

func TestFilter_SequentialApplicationEqualsCombined(t *testing.T) {
	p1 := mustNew(t, Options{Countries: []string{"SE", "DE", "CA"}})
	p2 := mustNew(t, Options{Exclude: []string{"fra"}})
	combined := mustNew(t, Options{Countries: []string{"SE", "DE", "CA"}, Exclude: []string{"fra"}})

	sequential := Collect(p2.Apply(p1.Apply(All(sampleEndpoints()))))
	direct := Collect(combined.Apply(All(sampleEndpoints())))

	if len(sequential) != len(direct) {
		t.Fatalf("sequential %v != combined %v", urls(sequential), urls(direct))
	}
	for i := range direct {
		if sequential[i] != direct[i] {
			t.Fatalf("sequential %v != combined %v", urls(sequential), urls(direct))
		}
	}
}

func TestFilter_EmptyOptionsPassEverything(t *testing.T) {
	f := mustNew(t, Options{})
	got := Collect(f.Apply(All(sampleEndpoints())))
	if len(got) != len(sampleEndpoints()) {
		t.Errorf("expected all endpoints to pass, got %v", urls(got))
	}
}

func TestFilter_PatternsAreUnanchored(t *testing.T) {
	f := mustNew(t, Options{Include: []string{"sto"}})
	got := Collect(f.Apply(All(sampleEndpoints())))
	if len(got) != 1 || got[0].URL != "se-sto.pvdata.host" {
		t.Errorf("expected substring matching, got %v", urls(got))
	}
}

func TestNew_RejectsBadPattern(t *testing.T) {
	if _, err := New(Options{Include: []string{"("}}); err == nil {
		t.Error("expected an error for an invalid include pattern")
	}
	if _, err := New(Options{Exclude: []string{"["}}); err == nil {
		t.Error("expected an error for an invalid exclude pattern")
	}
}

func TestApply_IsLazy(t *testing.T) {
	f := mustNew(t, Options{})
	seen := 0
	for range f.Apply(All(sampleEndpoints())) {
		seen++
		break
	}
	if seen != 1 {
		t.Errorf("expected to stop after one element, saw %d", seen)
	}
}
