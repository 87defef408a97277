// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package webtarget

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
	"gopkg.in/yaml.v3"

	"github.com/opentofu/webtarget/svcauth"
)

// rawClientConfig is the serialized form of a [ClientConfig], shared by the
// YAML and cty decoders.
type rawClientConfig struct {
	Timeout      string            `yaml:"timeout"`
	MaxRedirects int               `yaml:"max_redirects"`
	Headers      map[string]string `yaml:"headers"`

	// The credentials given directly are used for any host not in Hosts.
	rawCredentials `yaml:",inline"`
	Hosts          map[string]rawCredentials `yaml:"hosts"`
}

type rawCredentials struct {
	Token    string `yaml:"token"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// hostCredentials returns the credentials described, or nil if there are
// none.
func (r rawCredentials) hostCredentials() (svcauth.HostCredentials, error) {
	switch {
	case r.Token != "" && (r.Username != "" || r.Password != ""):
		return nil, fmt.Errorf("token cannot be combined with username and password")
	case r.Token != "":
		return svcauth.HostCredentialsToken(r.Token), nil
	case r.Username != "":
		return svcauth.HostCredentialsBasic{
			Username: r.Username,
			Password: r.Password,
		}, nil
	case r.Password != "":
		return nil, fmt.Errorf("password requires username")
	}
	return nil, nil
}

func (r *rawClientConfig) clientConfig() (*ClientConfig, error) {
	ret := &ClientConfig{
		MaxRedirects: r.MaxRedirects,
	}
	if r.Timeout != "" {
		d, err := time.ParseDuration(r.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout: %w", err)
		}
		if d < 0 {
			return nil, fmt.Errorf("invalid timeout: must not be negative")
		}
		ret.Timeout = d
	}
	if len(r.Headers) != 0 {
		ret.Headers = make(http.Header, len(r.Headers))
		for k, v := range r.Headers {
			ret.Headers.Set(k, v)
		}
	}

	var sources svcauth.Credentials
	if len(r.Hosts) != 0 {
		perHost := make(map[string]svcauth.HostCredentials, len(r.Hosts))
		for _, host := range sortedKeys(r.Hosts) {
			creds, err := r.Hosts[host].hostCredentials()
			if err != nil {
				return nil, fmt.Errorf("invalid credentials for host %q: %w", host, err)
			}
			if creds == nil {
				return nil, fmt.Errorf("no credentials given for host %q", host)
			}
			perHost[host] = creds
		}
		sources = append(sources, svcauth.StaticCredentialsSource(perHost))
	}
	creds, err := r.hostCredentials()
	if err != nil {
		return nil, err
	}
	if creds != nil {
		sources = append(sources, svcauth.AnyHostCredentialsSource(creds))
	}
	if len(sources) != 0 {
		// Each host is looked up in the chain only once per configuration.
		ret.Credentials = svcauth.CachingCredentialsSource(sources)
	}
	return ret, nil
}

// ParseClientConfigs decodes a YAML document whose top-level mapping keys
// are parameter names and whose values describe client configurations, in
// a form suitable for [ConfigurationProperty].
//
// Each configuration accepts the keys "timeout" (a duration string such as
// "10s"), "max_redirects", "headers", and either "token" for bearer token
// authentication or "username" and "password" for HTTP Basic authentication.
// The "hosts" key maps target hosts, as "host" or "host:port", to their own
// "token" or "username" and "password", which take precedence over the
// top-level credentials for requests to those hosts.
func ParseClientConfigs(src []byte) (map[string]*ClientConfig, error) {
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)

	var raw map[string]rawClientConfig
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid client configuration document: %w", err)
	}

	ret := make(map[string]*ClientConfig, len(raw))
	for _, name := range sortedKeys(raw) {
		r := raw[name]
		cfg, err := r.clientConfig()
		if err != nil {
			return nil, fmt.Errorf("invalid client configuration %q: %w", name, err)
		}
		ret[name] = cfg
	}
	return ret, nil
}

// LoadClientConfigs reads the file at the given path and decodes it with
// [ParseClientConfigs].
func LoadClientConfigs(path string) (map[string]*ClientConfig, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseClientConfigs(src)
}

// DecodeClientConfig decodes a client configuration from a cty object or
// map value, as would be produced by decoding HCL or JSON server
// configuration. It accepts the same attributes as [ParseClientConfigs].
//
// Null attributes are treated as unset.
func DecodeClientConfig(v cty.Value) (*ClientConfig, error) {
	if v.IsMarked() {
		return nil, fmt.Errorf("client configuration must not contain marked values")
	}
	if !v.IsWhollyKnown() {
		return nil, fmt.Errorf("client configuration must be wholly known")
	}
	if v.IsNull() {
		return nil, fmt.Errorf("client configuration must not be null")
	}
	if ty := v.Type(); !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("client configuration must be an object, not %s", ty.FriendlyName())
	}

	var raw rawClientConfig
	attrs := v.AsValueMap()
	for _, name := range sortedKeys(attrs) {
		attr := attrs[name]
		if attr.IsNull() {
			continue
		}
		var err error
		switch name {
		case "timeout":
			raw.Timeout, err = ctyString(attr)
		case "max_redirects":
			err = ctyInt(attr, &raw.MaxRedirects)
		case "headers":
			raw.Headers, err = ctyStringMap(attr)
		case "token":
			raw.Token, err = ctyString(attr)
		case "username":
			raw.Username, err = ctyString(attr)
		case "password":
			raw.Password, err = ctyString(attr)
		case "hosts":
			raw.Hosts, err = ctyHosts(attr)
		default:
			err = fmt.Errorf("unsupported attribute")
		}
		if err != nil {
			return nil, fmt.Errorf("invalid %q attribute: %w", name, err)
		}
	}
	return raw.clientConfig()
}

func ctyString(v cty.Value) (string, error) {
	sv, err := convert.Convert(v, cty.String)
	if err != nil {
		return "", err
	}
	return sv.AsString(), nil
}

func ctyInt(v cty.Value, into *int) error {
	nv, err := convert.Convert(v, cty.Number)
	if err != nil {
		return err
	}
	return gocty.FromCtyValue(nv, into)
}

func ctyStringMap(v cty.Value) (map[string]string, error) {
	mv, err := convert.Convert(v, cty.Map(cty.String))
	if err != nil {
		return nil, err
	}
	ret := make(map[string]string, mv.LengthInt())
	for k, ev := range mv.AsValueMap() {
		if ev.IsNull() {
			continue
		}
		ret[k] = ev.AsString()
	}
	return ret, nil
}

func ctyHosts(v cty.Value) (map[string]rawCredentials, error) {
	mv, err := convert.Convert(v, cty.Map(cty.Map(cty.String)))
	if err != nil {
		return nil, err
	}
	ret := make(map[string]rawCredentials, mv.LengthInt())
	for host, hv := range mv.AsValueMap() {
		if hv.IsNull() {
			continue
		}
		var creds rawCredentials
		for name, ev := range hv.AsValueMap() {
			if ev.IsNull() {
				continue
			}
			switch name {
			case "token":
				creds.Token = ev.AsString()
			case "username":
				creds.Username = ev.AsString()
			case "password":
				creds.Password = ev.AsString()
			default:
				return nil, fmt.Errorf("unsupported attribute %q for host %q", name, host)
			}
		}
		ret[host] = creds
	}
	return ret, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
