// Package registry registers the service with Consul so it is
// discoverable and health-checked alongside the rest of the platform.
package registry

import (
	"fmt"

	"github.com/hashicorp/consul/api"
	"github.com/rs/zerolog"
)

// ConsulRegistry registers and deregisters the service with a Consul agent.
type ConsulRegistry struct {
	client    *api.Client
	serviceID string
	logger    *zerolog.Logger
}

// NewConsulRegistry creates a registry talking to the agent at address.
func NewConsulRegistry(address string, logger *zerolog.Logger) (*ConsulRegistry, error) {
	config := api.DefaultConfig()
	config.Address = address

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	return &ConsulRegistry{
		client: client,
		logger: logger,
	}, nil
}

// Register announces the service with an HTTP health check against its
// /healthz endpoint.
func (r *ConsulRegistry) Register(name, host string, port int) error {
	r.serviceID = fmt.Sprintf("%s-%s-%d", name, host, port)

	registration := &api.AgentServiceRegistration{
		ID:      r.serviceID,
		Name:    name,
		Address: host,
		Port:    port,
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d/healthz", host, port),
			Interval:                       "10s",
			Timeout:                        "2s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}

	if err := r.client.Agent().ServiceRegister(registration); err != nil {
		return fmt.Errorf("failed to register service with consul: %w", err)
	}

	r.logger.Info().Str("service_id", r.serviceID).Msg("registered with consul")
	return nil
}

// Deregister removes the service from the agent, typically on shutdown.
func (r *ConsulRegistry) Deregister() error {
	if r.serviceID == "" {
		return nil
	}

	if err := r.client.Agent().ServiceDeregister(r.serviceID); err != nil {
		return fmt.Errorf("failed to deregister service from consul: %w", err)
	}

	r.logger.Info().Str("service_id", r.serviceID).Msg("deregistered from consul")
	return nil
}
