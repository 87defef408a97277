// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0

package binding

import (
	"context"
	"fmt"
	"reflect"
)

// InputError reports a problem with the content of a request rather than
// with the server, such as a missing path parameter. Frameworks should
// respond to it with a client error status.
type InputError struct {
	Name    string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Name, e.Message)
}

var stringType = reflect.TypeFor[string]()

// PathParamProvider binds [KindPath] parameters of type string to the first
// value the router captured for the path variable of the same name.
var PathParamProvider Provider = ProviderFunc(pathParamValueFactory)

func pathParamValueFactory(desc Descriptor) Match {
	if desc.Kind != KindPath || desc.Name == "" || desc.Type != stringType {
		return NotApplicable()
	}
	name := desc.Name
	return Found(ValueFactoryFunc(func(_ context.Context, req RequestContext) (any, error) {
		vals := req.PathParameters()[name]
		if len(vals) == 0 {
			return nil, &InputError{Name: name, Message: "no value in request path"}
		}
		return vals[0], nil
	}))
}
