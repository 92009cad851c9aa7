// Copyright © 2024 The vjailbreak authors

// Package openstack is the compute backend talking to nova. It also owns
// the nova-compute service of each host, which is how host services are
// disabled and enabled.
package openstack

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/gophercloud/gophercloud/v2"
	"github.com/gophercloud/gophercloud/v2/openstack"
	"github.com/gophercloud/gophercloud/v2/openstack/compute/v2/servers"
	"github.com/gophercloud/gophercloud/v2/openstack/compute/v2/services"
	retryablehttp "github.com/hashicorp/go-retryablehttp"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/config"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/loop"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/nfvi"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/nfvi/base"
	"github.com/openstack-archive/stx-nfv-sub001/pkg/objects"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	BackendName        = "openstack"
	requestIDHeader    = "X-Openstack-Request-Id"
	novaComputeBinary  = "nova-compute"
	disabledByStrategy = "disabled by orchestration"
)

type Backend struct {
	base.UnimplementedGateway
	compute *gophercloud.ServiceClient
	timeout time.Duration
	log     *logrus.Entry
}

// NewHTTPClient returns the client every request goes through. Requests
// failing with a connection error or a 5xx are retried up to retryMax times.
func NewHTTPClient(retryMax int, insecure bool) http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = retryMax
	rc.Logger = nil
	if insecure {
		if transport, ok := rc.HTTPClient.Transport.(*http.Transport); ok {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		}
	}
	return *rc.StandardClient()
}

// Connect authenticates against keystone and returns a backend on the
// compute endpoint of the configured region.
func Connect(ctx context.Context, cfg config.OpenStackConfig, timeout time.Duration, p loop.Poster) (*Backend, error) {
	provider, err := openstack.NewClient(cfg.AuthURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create openstack client")
	}
	provider.HTTPClient = NewHTTPClient(cfg.RetryMax, cfg.Insecure)
	err = openstack.Authenticate(ctx, provider, gophercloud.AuthOptions{
		IdentityEndpoint: cfg.AuthURL,
		Username:         cfg.Username,
		Password:         cfg.Password,
		DomainName:       cfg.DomainName,
		TenantName:       cfg.ProjectName,
		AllowReauth:      true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to authenticate")
	}
	compute, err := openstack.NewComputeV2(provider, gophercloud.EndpointOpts{Region: cfg.Region})
	if err != nil {
		return nil, errors.Wrap(err, "failed to find the compute endpoint")
	}
	return New(compute, timeout, p), nil
}

func New(compute *gophercloud.ServiceClient, timeout time.Duration, p loop.Poster) *Backend {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Backend{
		UnimplementedGateway: base.UnimplementedGateway{Poster: p},
		compute:              compute,
		timeout:              timeout,
		log:                  logrus.WithField("backend", BackendName),
	}
}

func (b *Backend) WhoAmI() string {
	return BackendName
}

// reason turns a request error into the text carried by a failed Response.
func reason(op, name string, err error) string {
	var unexpected gophercloud.ErrUnexpectedResponseCode
	if errors.As(err, &unexpected) {
		return fmt.Sprintf("%s %s failed with status %d", op, name, unexpected.Actual)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("%s %s timed out", op, name)
	}
	return fmt.Sprintf("%s %s failed: %v", op, name, err)
}

// do runs fn off the loop and delivers its outcome through the poster.
func (b *Backend) do(op, name string, cb nfvi.Callback, fn func(ctx context.Context) error) {
	b.doAction(op, name, cb, func(ctx context.Context) (http.Header, error) {
		return nil, fn(ctx)
	})
}

// doAction is do for server actions: the request id nova answers with
// becomes the ActionID of the response.
func (b *Backend) doAction(op, name string, cb nfvi.Callback, fn func(ctx context.Context) (http.Header, error)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()
		header, err := fn(ctx)
		if err != nil {
			b.log.Warnf("%s %s: %v", op, name, err)
			resp := nfvi.Failed(reason(op, name, err))
			resp.ActionID = header.Get(requestIDHeader)
			b.Respond(cb, resp)
			return
		}
		b.log.Debugf("%s %s done", op, name)
		resp := nfvi.Succeeded(nil)
		resp.ActionID = header.Get(requestIDHeader)
		b.Respond(cb, resp)
	}()
}

func (b *Backend) setComputeService(ctx context.Context, host string, status services.ServiceStatus) error {
	pages, err := services.List(b.compute, services.ListOpts{Binary: novaComputeBinary, Host: host}).AllPages(ctx)
	if err != nil {
		return err
	}
	found, err := services.ExtractServices(pages)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		return errors.Errorf("no %s service on host %s", novaComputeBinary, host)
	}
	opts := services.UpdateOpts{Status: status}
	if status == services.ServiceDisabled {
		opts.DisabledReason = disabledByStrategy
	}
	for _, svc := range found {
		if err := services.Update(ctx, b.compute, svc.ID, opts).Err; err != nil {
			return err
		}
	}
	return nil
}

func (b *Backend) DisableHostServices(uuid, name string, service objects.HostService, cb nfvi.Callback) {
	if service != objects.HostServiceCompute {
		b.UnimplementedGateway.DisableHostServices(uuid, name, service, cb)
		return
	}
	b.do("disable-services", name, cb, func(ctx context.Context) error {
		return b.setComputeService(ctx, name, services.ServiceDisabled)
	})
}

func (b *Backend) EnableHostServices(uuid, name string, service objects.HostService, cb nfvi.Callback) {
	if service != objects.HostServiceCompute {
		b.UnimplementedGateway.EnableHostServices(uuid, name, service, cb)
		return
	}
	b.do("enable-services", name, cb, func(ctx context.Context) error {
		return b.setComputeService(ctx, name, services.ServiceEnabled)
	})
}

// Nova learns about service changes from the service update itself.
func (b *Backend) NotifyHostServicesDisabled(uuid, name string, cb nfvi.Callback) {
	b.Respond(cb, nfvi.Succeeded(nil))
}

func (b *Backend) NotifyHostServicesEnabled(uuid, name string, cb nfvi.Callback) {
	b.Respond(cb, nfvi.Succeeded(nil))
}

func (b *Backend) LiveMigrateInstance(uuid, name, toHost string, cb nfvi.Callback) {
	b.doAction("live-migrate", name, cb, func(ctx context.Context) (http.Header, error) {
		blockMigration := false
		opts := servers.LiveMigrateOpts{BlockMigration: &blockMigration}
		if toHost != "" {
			opts.Host = &toHost
		}
		r := servers.LiveMigrate(ctx, b.compute, uuid, opts)
		return r.Header, r.ExtractErr()
	})
}

func (b *Backend) ColdMigrateInstance(uuid, name string, cb nfvi.Callback) {
	b.doAction("cold-migrate", name, cb, func(ctx context.Context) (http.Header, error) {
		r := servers.Migrate(ctx, b.compute, uuid)
		return r.Header, r.ExtractErr()
	})
}

func (b *Backend) ColdMigrateConfirmInstance(uuid, name string, cb nfvi.Callback) {
	b.doAction("cold-migrate-confirm", name, cb, func(ctx context.Context) (http.Header, error) {
		r := servers.ConfirmResize(ctx, b.compute, uuid)
		return r.Header, r.ExtractErr()
	})
}

func (b *Backend) EvacuateInstance(uuid, name string, cb nfvi.Callback) {
	b.doAction("evacuate", name, cb, func(ctx context.Context) (http.Header, error) {
		r := servers.Evacuate(ctx, b.compute, uuid, servers.EvacuateOpts{})
		return r.Header, r.Err
	})
}

func (b *Backend) StartInstance(uuid, name string, cb nfvi.Callback) {
	b.doAction("start", name, cb, func(ctx context.Context) (http.Header, error) {
		r := servers.Start(ctx, b.compute, uuid)
		return r.Header, r.ExtractErr()
	})
}

func (b *Backend) StopInstance(uuid, name string, cb nfvi.Callback) {
	b.doAction("stop", name, cb, func(ctx context.Context) (http.Header, error) {
		r := servers.Stop(ctx, b.compute, uuid)
		return r.Header, r.ExtractErr()
	})
}

func (b *Backend) PauseInstance(uuid, name string, cb nfvi.Callback) {
	b.doAction("pause", name, cb, func(ctx context.Context) (http.Header, error) {
		r := servers.Pause(ctx, b.compute, uuid)
		return r.Header, r.ExtractErr()
	})
}

func (b *Backend) UnpauseInstance(uuid, name string, cb nfvi.Callback) {
	b.doAction("unpause", name, cb, func(ctx context.Context) (http.Header, error) {
		r := servers.Unpause(ctx, b.compute, uuid)
		return r.Header, r.ExtractErr()
	})
}

func (b *Backend) SuspendInstance(uuid, name string, cb nfvi.Callback) {
	b.doAction("suspend", name, cb, func(ctx context.Context) (http.Header, error) {
		r := servers.Suspend(ctx, b.compute, uuid)
		return r.Header, r.ExtractErr()
	})
}

func (b *Backend) ResumeInstance(uuid, name string, cb nfvi.Callback) {
	b.doAction("resume", name, cb, func(ctx context.Context) (http.Header, error) {
		r := servers.Resume(ctx, b.compute, uuid)
		return r.Header, r.ExtractErr()
	})
}

func (b *Backend) RebootInstance(uuid, name string, hard bool, cb nfvi.Callback) {
	b.doAction("reboot", name, cb, func(ctx context.Context) (http.Header, error) {
		how := servers.SoftReboot
		if hard {
			how = servers.HardReboot
		}
		r := servers.Reboot(ctx, b.compute, uuid, servers.RebootOpts{Type: how})
		return r.Header, r.ExtractErr()
	})
}

// RebuildInstance rebuilds the server from the image it was booted from.
func (b *Backend) RebuildInstance(uuid, name string, cb nfvi.Callback) {
	b.doAction("rebuild", name, cb, func(ctx context.Context) (http.Header, error) {
		server, err := servers.Get(ctx, b.compute, uuid).Extract()
		if err != nil {
			return nil, err
		}
		image, _ := server.Image["id"].(string)
		if image == "" {
			return nil, errors.New("server was not booted from an image")
		}
		r := servers.Rebuild(ctx, b.compute, uuid, servers.RebuildOpts{ImageRef: image})
		return r.Header, r.Err
	})
}

func (b *Backend) DeleteInstance(uuid, name string, cb nfvi.Callback) {
	b.doAction("delete", name, cb, func(ctx context.Context) (http.Header, error) {
		r := servers.Delete(ctx, b.compute, uuid)
		return r.Header, r.ExtractErr()
	})
}

var _ nfvi.ComputeAPI = &Backend{}
