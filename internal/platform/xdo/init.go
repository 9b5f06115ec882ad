//go:build linux || freebsd || openbsd

package xdo

import "github.com/GNOME/orca-sub019/internal/platform"

func init() {
	platform.NewProviderFunc = func(opts platform.ProviderOptions) (*platform.Provider, error) {
		d := NewDispatcher(opts.XdotoolPath, opts.Logger)
		if err := d.Check(); err != nil {
			return nil, err
		}
		return &platform.Provider{Dispatcher: d}, nil
	}
}
