package alloc

import (
	"context"

	"go.uber.org/fx"

	"github.com/benz9527/xlinked/lib/infra"
)

// FxModule provides a and installs it into the process-wide registry
// when the application starts.
func FxModule(a Allocator) fx.Option {
	return fx.Module("xlinked.alloc",
		fx.Provide(func() Allocator { return a }),
		fx.Invoke(func(lc fx.Lifecycle, a Allocator) {
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					if !Register(a) {
						return infra.WrapErrorStackWithMessage(ErrNilAllocator, "fx module start")
					}
					return nil
				},
			})
		}),
	)
}
