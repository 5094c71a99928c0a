package container

import (
	"github.com/samber/do"
	"github.com/serroba/url-shortener/internal/metrics"
	"github.com/serroba/url-shortener/internal/shortener"
	"go.uber.org/zap"
)

// MetricsPackage provides the prometheus metrics.
func MetricsPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*metrics.Metrics, error) {
		return metrics.New(), nil
	})
}

// ServicePackage provides the shortener service.
func ServicePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*shortener.Service, error) {
		generator, err := shortener.NewNanoIDGenerator()
		if err != nil {
			return nil, err
		}

		return shortener.NewService(
			do.MustInvoke[shortener.Repository](i),
			generator,
			shortener.WithRecorder(do.MustInvoke[*metrics.Metrics](i)),
			shortener.WithLogger(do.MustInvoke[*zap.Logger](i).Named("shortener")),
		), nil
	})
}
