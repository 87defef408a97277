// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package webtarget

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/opentofu/webtarget/binding"
	"github.com/opentofu/webtarget/internal/uritemplates"
)

func mustURL(t *testing.T, s string) *url.URL {
	t.Helper()
	u, err := url.Parse(s)
	if err != nil {
		t.Fatalf("invalid URL %s in test case: %s", s, err)
	}
	return u
}

func targetDesc(name string) binding.Descriptor {
	return binding.Descriptor{Name: name, Type: TargetType, Kind: binding.KindURI}
}

func mustFactory(t *testing.T, p *Provider, name string) *Factory {
	t.Helper()
	f := p.NewFactory(targetDesc(name))
	if f == nil {
		t.Fatalf("provider declined %q", name)
	}
	return f
}

func TestProviderDeclines(t *testing.T) {
	p := NewProvider(binding.NoConfiguration)

	tests := map[string]binding.Descriptor{
		"empty name":         {Name: "", Type: TargetType, Kind: binding.KindURI},
		"empty name no type": {Name: "", Kind: binding.KindURI},
		"string type":        {Name: "/items/{id}", Type: reflect.TypeFor[string](), Kind: binding.KindURI},
		"non-pointer target": {Name: "/items/{id}", Type: reflect.TypeFor[Target](), Kind: binding.KindURI},
		"no type":            {Name: "/items/{id}", Kind: binding.KindURI},
	}
	for name, desc := range tests {
		t.Run(name, func(t *testing.T) {
			if f := p.NewFactory(desc); f != nil {
				t.Errorf("provider accepted %s", desc)
			}
			if _, ok := p.ValueFactory(desc).Factory(); ok {
				t.Errorf("provider matched %s", desc)
			}
		})
	}

	// A template that does not parse is still accepted, because the
	// problem is reported on each request instead.
	if f := p.NewFactory(targetDesc("/items/{id")); f == nil {
		t.Error("provider declined a malformed template")
	}
}

func TestProviderDefaultClient(t *testing.T) {
	defaultClient := &http.Client{}
	req := &binding.Request{
		Params: map[string][]string{"id": {"1"}},
		Base:   mustURL(t, "https://api.example.com/"),
	}

	configs := map[string]binding.Configuration{
		"nil":          nil,
		"no property":  binding.Properties{"unrelated": 1},
		"wrong shape":  binding.Properties{ConfigurationProperty: []string{"/items/{id}"}},
		"wrong values": binding.Properties{ConfigurationProperty: map[string]string{"/items/{id}": "x"}},
		"no entry":     binding.Properties{ConfigurationProperty: map[string]*ClientConfig{"other": {}}},
	}
	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			p := NewProvider(cfg, WithDefaultHTTPClient(defaultClient))
			f := mustFactory(t, p, "/items/{id}")
			if f.Config() != nil {
				t.Errorf("unexpected client configuration %#v", f.Config())
			}
			target, err := f.Target(t.Context(), req)
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if target.Client() != defaultClient {
				t.Error("target does not use the default client")
			}
			if target.Config() != nil {
				t.Errorf("unexpected target configuration %#v", target.Config())
			}
		})
	}
}

func TestProviderSharedDefaultClient(t *testing.T) {
	req := &binding.Request{Base: mustURL(t, "https://api.example.com/")}
	t1, err := mustFactory(t, NewProvider(nil), "/a").Target(t.Context(), req)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	t2, err := mustFactory(t, NewProvider(nil), "/b").Target(t.Context(), req)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if t1.Client() == nil || t1.Client() != t2.Client() {
		t.Error("providers without a default client do not share one")
	}
}

func TestProviderNamedOverride(t *testing.T) {
	defaultClient := &http.Client{}
	cfgA := &ClientConfig{Headers: http.Header{"X-Which": {"a"}}}
	p := NewProvider(binding.Properties{
		ConfigurationProperty: map[string]*ClientConfig{"backend": cfgA},
	}, WithDefaultHTTPClient(defaultClient))
	req := &binding.Request{Base: mustURL(t, "https://api.example.com/")}

	backend := mustFactory(t, p, "backend")
	if backend.Config() != cfgA {
		t.Errorf("wrong configuration for backend: %#v", backend.Config())
	}
	target, err := backend.Target(t.Context(), req)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if target.Config() != cfgA {
		t.Errorf("wrong target configuration: %#v", target.Config())
	}
	if target.Client() == defaultClient {
		t.Error("overridden target uses the default client")
	}

	other := mustFactory(t, p, "other")
	if other.Config() != nil {
		t.Errorf("wrong configuration for other: %#v", other.Config())
	}
	target, err = other.Target(t.Context(), req)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if target.Client() != defaultClient {
		t.Error("target without override does not use the default client")
	}
}

func TestFactoryTarget(t *testing.T) {
	tests := []struct {
		name   string
		tmpl   string
		params map[string][]string
		base   string
		want   string
	}{
		{
			"first value wins",
			"/items/{id}",
			map[string][]string{"id": {"7", "8"}},
			"https://api.example.com/",
			"https://api.example.com/items/7",
		},
		{
			"relative",
			"/items/{id}",
			map[string][]string{"id": {"42"}},
			"https://api.example.com/v1/",
			"https://api.example.com/v1/items/42",
		},
		{
			"relative without slashes",
			"items/{id}",
			map[string][]string{"id": {"42"}},
			"https://api.example.com/v1",
			"https://api.example.com/v1/items/42",
		},
		{
			"relative to root",
			"/items/{id}",
			map[string][]string{"id": {"42"}},
			"https://api.example.com",
			"https://api.example.com/items/42",
		},
		{
			"relative with query",
			"/items/{id}?expand={expand}#top",
			map[string][]string{"id": {"42"}, "expand": {"true"}},
			"https://api.example.com/v1/?base=1",
			"https://api.example.com/v1/items/42?expand=true#top",
		},
		{
			"scheme relative",
			"//other.example.com/items/{id}",
			map[string][]string{"id": {"42"}},
			"http://api.example.com/v1/",
			"http://other.example.com/items/42",
		},
		{
			"absolute",
			"https://other.example.com/items/{id}",
			map[string][]string{"id": {"42"}},
			"https://api.example.com/v1/",
			"https://other.example.com/items/42",
		},
		{
			"encoded value",
			"/items/{id}",
			map[string][]string{"id": {"a%2Fb"}},
			"https://api.example.com/v1/",
			"https://api.example.com/v1/items/a%2Fb",
		},
		{
			"value with query delimiter",
			"/items/{id}",
			map[string][]string{"id": {"a?admin=true"}},
			"https://api.example.com/v1/",
			"https://api.example.com/v1/items/a%3Fadmin=true",
		},
		{
			"value with fragment delimiter",
			"/items/{id}",
			map[string][]string{"id": {"a#frag"}},
			"https://api.example.com/v1/",
			"https://api.example.com/v1/items/a%23frag",
		},
		{
			"query value",
			"/search?q={q}",
			map[string][]string{"q": {"a?b#c"}},
			"https://api.example.com/v1/",
			"https://api.example.com/v1/search?q=a?b%23c",
		},
		{
			"host value",
			"https://{host}.example.com/items",
			map[string][]string{"host": {"shop"}},
			"https://api.example.com/v1/",
			"https://shop.example.com/items",
		},
		{
			"empty value",
			"/items/{id}/notes",
			map[string][]string{"id": {""}},
			"https://api.example.com/",
			"https://api.example.com/items//notes",
		},
		{
			"no variables",
			"/health",
			nil,
			"https://api.example.com/v1/",
			"https://api.example.com/v1/health",
		},
		{
			"internationalized host",
			"https://bücher.example:8443/items/{id}",
			map[string][]string{"id": {"42"}},
			"https://api.example.com/",
			"https://xn--bcher-kva.example:8443/items/42",
		},
	}

	p := NewProvider(nil)
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := mustFactory(t, p, test.tmpl)
			if got := f.Template(); got != test.tmpl {
				t.Errorf("wrong template %q", got)
			}
			target, err := f.Target(t.Context(), &binding.Request{
				Params: test.params,
				Base:   mustURL(t, test.base),
			})
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if got := target.String(); got != test.want {
				t.Errorf("wrong result\ngot:  %s\nwant: %s", got, test.want)
			}
		})
	}
}

func TestFactoryTargetAbsoluteIgnoresBase(t *testing.T) {
	f := mustFactory(t, NewProvider(nil), "https://other.example.com/items/{id}")
	params := map[string][]string{"id": {"42"}}

	var got []string
	for _, base := range []*url.URL{
		mustURL(t, "https://api.example.com/v1/"),
		mustURL(t, "http://elsewhere.example.net:8080/deep/path/"),
		nil,
	} {
		target, err := f.Target(t.Context(), &binding.Request{Params: params, Base: base})
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		got = append(got, target.String())
	}
	want := []string{
		"https://other.example.com/items/42",
		"https://other.example.com/items/42",
		"https://other.example.com/items/42",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrong results\n%s", diff)
	}
}

func TestFactoryTargetErrors(t *testing.T) {
	base := mustURL(t, "https://api.example.com/v1/")
	tests := []struct {
		name    string
		tmpl    string
		params  map[string][]string
		base    *url.URL
		wantErr any
	}{
		{
			"missing key",
			"/items/{id}",
			map[string][]string{"other": {"1"}},
			base,
			new(*uritemplates.UndefinedVariableError),
		},
		{
			"empty values",
			"/items/{id}",
			map[string][]string{"id": {}},
			base,
			new(*uritemplates.UndefinedVariableError),
		},
		{
			"no parameters",
			"https://other.example.com/items/{id}",
			nil,
			base,
			new(*uritemplates.UndefinedVariableError),
		},
		{
			"malformed template",
			"/items/{id",
			map[string][]string{"id": {"1"}},
			base,
			new(*uritemplates.ParseError),
		},
		{
			"invalid URL",
			"{scheme}://example.com/",
			map[string][]string{"scheme": {"1http"}},
			base,
			new(*url.Error),
		},
		{
			"host value with fragment delimiter",
			"https://{host}.example.com/items",
			map[string][]string{"host": {"evil.com#"}},
			base,
			new(*url.Error),
		},
		{
			"host value with userinfo delimiter",
			"https://{host}.example.com/items",
			map[string][]string{"host": {"evil.com@"}},
			base,
			new(*url.Error),
		},
		{
			"relative without base",
			"/items/{id}",
			map[string][]string{"id": {"1"}},
			nil,
			nil,
		},
		{
			"relative with relative base",
			"/items/{id}",
			map[string][]string{"id": {"1"}},
			mustURL(t, "/v1/"),
			nil,
		},
	}

	p := NewProvider(nil)
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := mustFactory(t, p, test.tmpl)
			target, err := f.Target(t.Context(), &binding.Request{Params: test.params, Base: test.base})
			if err == nil {
				t.Fatalf("unexpected success: %s", target)
			}
			if target != nil {
				t.Errorf("unexpected target alongside error: %s", target)
			}
			var resolveErr *ResolveError
			if !errors.As(err, &resolveErr) {
				t.Fatalf("wrong error type %T: %s", err, err)
			}
			if resolveErr.Template != test.tmpl {
				t.Errorf("wrong template in error %q", resolveErr.Template)
			}
			if test.wantErr != nil && !errors.As(err, test.wantErr) {
				t.Errorf("error does not wrap %T: %s", test.wantErr, err)
			}

			// The binding.ValueFactory form reports the same failure.
			v, err := f.Value(t.Context(), &binding.Request{Params: test.params, Base: test.base})
			if err == nil || v != nil {
				t.Errorf("wrong Value result %#v, %v", v, err)
			}
		})
	}
}

func TestFactoryConcurrentRequests(t *testing.T) {
	f := mustFactory(t, NewProvider(nil), "/items/{id}")
	base := mustURL(t, "https://api.example.com/v1/")

	const n = 50
	got := make([]string, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			target, err := f.Target(t.Context(), &binding.Request{
				Params: map[string][]string{"id": {fmt.Sprint(i)}},
				Base:   base,
			})
			if err != nil {
				got[i] = err.Error()
				return
			}
			got[i] = target.String()
		}()
	}
	wg.Wait()

	want := make([]string, n)
	for i := range n {
		want[i] = fmt.Sprintf("https://api.example.com/v1/items/%d", i)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrong results\n%s", diff)
	}
}

func TestRegister(t *testing.T) {
	reg := binding.NewRegistry()
	Register(reg, binding.NoConfiguration)

	vf, err := reg.Bind(targetDesc("/items/{id}"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	v, err := vf.Value(t.Context(), &binding.Request{
		Params: map[string][]string{"id": {"3"}},
		Base:   mustURL(t, "https://api.example.com/"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	target, ok := v.(*Target)
	if !ok {
		t.Fatalf("wrong value type %T", v)
	}
	if got, want := target.String(), "https://api.example.com/items/3"; got != want {
		t.Errorf("wrong result\ngot:  %s\nwant: %s", got, want)
	}

	_, err = reg.Bind(binding.Descriptor{Name: "", Type: TargetType, Kind: binding.KindURI})
	var noProv *binding.NoProviderError
	if !errors.As(err, &noProv) {
		t.Errorf("wrong error for unnamed parameter: %v", err)
	}
}

func TestTrace(t *testing.T) {
	type event struct {
		Event    string
		Template string
		Arg      string
		Override bool
		Ctx      bool
	}
	type ctxKey string
	var providerEvents, ctxEvents []event

	providerTrace := &Trace{
		FactoryCreated: func(template string, override bool) {
			providerEvents = append(providerEvents, event{Event: "FactoryCreated", Template: template, Override: override})
		},
		TargetResolved: func(_ context.Context, template string, u *url.URL) {
			providerEvents = append(providerEvents, event{Event: "TargetResolved", Template: template, Arg: u.String()})
		},
	}
	p := NewProvider(binding.Properties{
		ConfigurationProperty: map[string]*ClientConfig{"/b/{id}": {}},
	}, WithTrace(providerTrace))

	fa := mustFactory(t, p, "/a/{id}")
	fb := mustFactory(t, p, "/b/{id}")

	req := &binding.Request{
		Params: map[string][]string{"id": {"1"}},
		Base:   mustURL(t, "https://api.example.com/"),
	}
	if _, err := fa.Target(t.Context(), req); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	ctx := context.WithValue(t.Context(), ctxKey("marker"), true)
	ctx = ContextWithTrace(ctx, &Trace{
		TargetFailed: func(ctx context.Context, template string, err error) {
			ctxEvents = append(ctxEvents, event{
				Event:    "TargetFailed",
				Template: template,
				Arg:      err.Error(),
				Ctx:      ctx.Value(ctxKey("marker")) != nil,
			})
		},
	})
	if _, err := fb.Target(ctx, &binding.Request{Base: req.Base}); err == nil {
		t.Fatal("unexpected success; want error")
	}
	// The context trace has no TargetResolved hook, and it replaces the
	// provider's trace rather than adding to it.
	if _, err := fb.Target(ctx, req); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	wantProvider := []event{
		{Event: "FactoryCreated", Template: "/a/{id}"},
		{Event: "FactoryCreated", Template: "/b/{id}", Override: true},
		{Event: "TargetResolved", Template: "/a/{id}", Arg: "https://api.example.com/a/1"},
	}
	if diff := cmp.Diff(wantProvider, providerEvents); diff != "" {
		t.Errorf("wrong provider trace events\n%s", diff)
	}
	wantCtx := []event{
		{
			Event:    "TargetFailed",
			Template: "/b/{id}",
			Arg:      `cannot resolve target from URI template "/b/{id}": no value for template variable "id"`,
			Ctx:      true,
		},
	}
	if diff := cmp.Diff(wantCtx, ctxEvents); diff != "" {
		t.Errorf("wrong context trace events\n%s", diff)
	}
}
