package app

import (
	"context"
	"fmt"

	"github.com/vk/hostgrid/internal/export"
)

// List writes the whole inventory in the configured output format.
func (a *App) List(ctx context.Context) error {
	if a.inv == nil {
		return ErrNotLoaded
	}
	a.logger.Debug("Listing inventory.", "output", a.config.Output)

	var (
		out []byte
		err error
	)
	switch a.config.Output {
	case OutputYAML:
		out, err = export.YAML(a.inv)
	default:
		out, err = export.JSON(a.inv)
	}
	if err != nil {
		return err
	}
	_, err = a.outW.Write(out)
	return err
}

// Graph writes the group tree below group, or below "all" when group is
// empty.
func (a *App) Graph(ctx context.Context, group string, vars bool) error {
	if a.inv == nil {
		return ErrNotLoaded
	}

	root := a.inv.All()
	if group != "" {
		g, ok := a.inv.Group(group)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownGroup, group)
		}
		root = g
	}
	a.logger.Debug("Rendering group graph.", "root", root.Name(), "vars", vars)
	return export.Graph(a.outW, root, vars)
}

// Host writes the effective variables of the named host as JSON.
func (a *App) Host(ctx context.Context, name string) error {
	if a.inv == nil {
		return ErrNotLoaded
	}

	h, ok := a.inv.Host(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHost, name)
	}
	a.logger.Debug("Resolving host variables.", "host", name, "groups", len(a.inv.HostGroups(h)))

	out, err := export.HostJSON(a.inv, h)
	if err != nil {
		return err
	}
	_, err = a.outW.Write(out)
	return err
}
