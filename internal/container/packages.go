package container

import "github.com/samber/do"

// NewServerInjector registers every package the HTTP server needs.
func NewServerInjector(options *Options) *do.Injector {
	injector := do.New()

	do.ProvideValue(injector, options)
	LoggerPackage(injector)
	MetricsPackage(injector)

	if options.RedisAddr != "" {
		RedisPackage(injector)
	}

	StorePackage(injector)
	ServicePackage(injector)
	EventBusPackage(injector)
	ConsumerGroupPackage(injector)
	HTTPPackage(injector)

	return injector
}
