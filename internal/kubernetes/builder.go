package kubernetes

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/util/validation"
	"k8s.io/client-go/rest"
	"sigs.k8s.io/controller-runtime/pkg/client"
	ctrlconfig "sigs.k8s.io/controller-runtime/pkg/client/config"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

const (
	// serviceAccountNamespaceFile is where the pod's namespace is mounted
	serviceAccountNamespaceFile = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"

	maxNamespaceFileSize = 256
)

type clientOptions struct {
	restConfig *rest.Config
	namespace  string
	current    bool
}

// Option configures the catalog client
type Option func(*clientOptions) error

// WithRESTConfig uses cfg instead of the kubeconfig or in-cluster configuration
func WithRESTConfig(cfg *rest.Config) Option {
	return func(o *clientOptions) error {
		if cfg == nil {
			return fmt.Errorf("rest config is required")
		}
		o.restConfig = cfg
		return nil
	}
}

// WithNamespace restricts the client to a single namespace
func WithNamespace(namespace string) Option {
	return func(o *clientOptions) error {
		if err := validateNamespace(namespace); err != nil {
			return err
		}
		o.namespace = namespace
		return nil
	}
}

// WithCurrentNamespace restricts the client to the namespace the process runs
// in. Outside a cluster the option is ignored and all namespaces are used.
func WithCurrentNamespace() Option {
	return func(o *clientOptions) error {
		o.current = true
		return nil
	}
}

// CatalogClient is a read-only client scoped to the namespace entities are read from.
// An empty Namespace means all namespaces.
type CatalogClient struct {
	client.Reader
	Namespace string
}

// NewCatalogClient creates a client able to list ConfigMaps
func NewCatalogClient(ctx context.Context, opts ...Option) (*CatalogClient, error) {
	logger := log.FromContext(ctx)

	o := &clientOptions{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	if o.current && o.namespace == "" {
		ns, err := readNamespaceFromFile(serviceAccountNamespaceFile)
		switch {
		case err == nil:
			o.namespace = ns
		case os.IsNotExist(err):
			logger.Info("Not running in a cluster, reading entities from all namespaces")
		default:
			return nil, fmt.Errorf("failed to read current namespace: %w", err)
		}
	}

	restConfig := o.restConfig
	if restConfig == nil {
		var err error
		restConfig, err = ctrlconfig.GetConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load kubernetes configuration: %w", err)
		}
	}

	scheme := runtime.NewScheme()
	if err := corev1.AddToScheme(scheme); err != nil {
		return nil, fmt.Errorf("failed to add core/v1 scheme: %w", err)
	}

	c, err := client.New(restConfig, client.Options{Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	logger.Info("Kubernetes catalog client created", "namespace", o.namespace)
	return &CatalogClient{Reader: c, Namespace: o.namespace}, nil
}

func readNamespaceFromFile(path string) (string, error) {
	f, err := os.Open(path) // #nosec G304 -- fixed service account path or test fixture
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxNamespaceFileSize+1))
	if err != nil {
		return "", err
	}
	if len(data) > maxNamespaceFileSize {
		return "", fmt.Errorf("namespace file %s exceeds %d bytes", path, maxNamespaceFileSize)
	}

	ns := strings.TrimSpace(string(data))
	if err := validateNamespace(ns); err != nil {
		return "", err
	}
	return ns, nil
}

func validateNamespace(namespace string) error {
	if namespace == "" {
		return fmt.Errorf("namespace cannot be empty")
	}
	if errs := validation.IsDNS1123Label(namespace); len(errs) > 0 {
		return fmt.Errorf("invalid namespace %q: %s", namespace, strings.Join(errs, ", "))
	}
	return nil
}
