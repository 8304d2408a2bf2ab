package common

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/pipeline-tracker/internal/catalog"
)

// PathParam returns the decoded chi route parameter paramName.
// Gerrit project names carry slashes, so values arrive URL-encoded and are
// unescaped once more here. Empty values and values containing whitespace
// are rejected.
func PathParam(r *http.Request, paramName string) (string, error) {
	decoded, err := url.PathUnescape(chi.URLParam(r, paramName))
	if err != nil {
		return "", fmt.Errorf("invalid URL encoding in %s", paramName)
	}
	if strings.TrimSpace(decoded) == "" {
		return "", fmt.Errorf("%s cannot be empty", paramName)
	}
	if strings.ContainsAny(decoded, " \t\n\r") {
		return "", fmt.Errorf("%s cannot contain whitespace", paramName)
	}
	return decoded, nil
}

// EntityRefParam builds an entity reference from the kind, optional namespace
// and name route parameters.
func EntityRefParam(r *http.Request) (catalog.EntityRef, error) {
	kind, err := PathParam(r, "kind")
	if err != nil {
		return catalog.EntityRef{}, err
	}
	name, err := PathParam(r, "name")
	if err != nil {
		return catalog.EntityRef{}, err
	}
	var namespace string
	if chi.URLParam(r, "namespace") != "" {
		if namespace, err = PathParam(r, "namespace"); err != nil {
			return catalog.EntityRef{}, err
		}
	}
	return catalog.NewEntityRef(kind, namespace, name), nil
}
