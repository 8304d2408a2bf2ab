// Package kubernetes builds the read-only Kubernetes client used by the
// ConfigMap-backed catalog and resolves the namespace it should watch.
package kubernetes
