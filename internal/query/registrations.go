package query

import (
	"context"

	"github.com/zjrosen/signup/internal/registration"
)

// RegistrationsAPI is the remote registration resource.
type RegistrationsAPI interface {
	List(ctx context.Context, tenant string) ([]registration.Registration, error)
	Create(ctx context.Context, tenant string, in registration.Input) (registration.Ack, error)
	Delete(ctx context.Context, tenant, id string) (registration.Registration, error)
}

type (
	// RegistrationsQuery observes the registration list of one tenant.
	RegistrationsQuery = Query[[]registration.Registration]
	// CreateMutation submits a registration.
	CreateMutation = Mutation[registration.Input, registration.Ack]
	// DeleteMutation removes a registration by id.
	DeleteMutation = Mutation[string, registration.Registration]
)

// RegistrationsKey is the list key for tenant.
func RegistrationsKey(tenant string) Key {
	return Key{Tag: TagGetRegistrations, Scope: tenant}
}

// NewRegistrationsQuery binds the list of tenant's registrations.
func NewRegistrationsQuery(c *Client, api RegistrationsAPI, tenant string) *RegistrationsQuery {
	return NewQuery(c, RegistrationsKey(tenant), func(ctx context.Context) ([]registration.Registration, error) {
		regs, err := api.List(ctx, tenant)
		if err != nil {
			return nil, err
		}
		if regs == nil {
			regs = []registration.Registration{}
		}
		return regs, nil
	})
}

// NewCreateMutation binds registration submission for tenant. Success
// invalidates the registration list of every tenant.
func NewCreateMutation(c *Client, api RegistrationsAPI, tenant string) *CreateMutation {
	return NewMutation(c, Key{Tag: TagCreateRegistration, Scope: tenant},
		func(ctx context.Context, in registration.Input) (registration.Ack, error) {
			return api.Create(ctx, tenant, in)
		},
		MutationOptions[registration.Input, registration.Ack]{
			OnSuccess: func(c *Client, _ registration.Input, _ registration.Ack) {
				c.Invalidate(Key{Tag: TagGetRegistrations})
			},
		})
}

// NewDeleteMutation binds registration removal for tenant. Success
// invalidates only tenant's registration list.
func NewDeleteMutation(c *Client, api RegistrationsAPI, tenant string) *DeleteMutation {
	return NewMutation(c, Key{Tag: TagDeleteRegistration, Scope: tenant},
		func(ctx context.Context, id string) (registration.Registration, error) {
			return api.Delete(ctx, tenant, id)
		},
		MutationOptions[string, registration.Registration]{
			OnSuccess: func(c *Client, _ string, _ registration.Registration) {
				c.Invalidate(RegistrationsKey(tenant))
			},
		})
}
