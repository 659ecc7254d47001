package app

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/nergy-se/energybridge/pkg/meter"
	"github.com/nergy-se/energybridge/pkg/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func statusMux(cache *meter.Cache) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/latest", func(w http.ResponseWriter, r *http.Request) {
		fields := cache.Get()
		if fields == nil {
			http.Error(w, "no reading yet", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(fields)
		if err != nil {
			logrus.Errorf("error encoding latest reading: %s", err)
		}
	})
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(version.Version)
		if err != nil {
			logrus.Errorf("error encoding version: %s", err)
		}
	})
	return mux
}

func (a *App) startStatusServer(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.config.HTTPAddress)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           statusMux(a.cache),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logrus.Infof("status server listening on %s", ln.Addr())

	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("status server: %s", err)
		}
	}()
	go func() {
		defer a.wg.Done()
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if err != nil {
			logrus.Errorf("error shutting down status server: %s", err)
		}
	}()
	return nil
}
