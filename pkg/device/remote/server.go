package remote

import (
	"context"
	"errors"
	"net/http"
	"net/rpc"

	pkgerrors "github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"rectanim/pkg/proto"
)

// Handler serves dev over net/rpc at the default rpc path.
func Handler(dev proto.Player, logger *zap.Logger) (http.Handler, error) {
	server := rpc.NewServer()
	if err := server.Register(&Service{dev: dev, logger: logger}); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle(rpc.DefaultRPCPath, server)
	return mux, nil
}

func Proxy(dev proto.Player, srv *http.Server, logger *zap.Logger, lifecycle fx.Lifecycle) error {
	h, err := Handler(dev, logger)
	if err != nil {
		return err
	}
	srv.Handler = h

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					logger.With(zap.Error(err)).Fatal("rpc server stopped")
				}
			}()
			logger.With(zap.String("addr", srv.Addr)).Info("rpc server started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})

	return nil
}

type Service struct {
	dev    proto.Player
	logger *zap.Logger
}

func (s *Service) Command(name string, resp *EmptyResponse) error {
	s.logger.With(zap.String("name", name)).Debug("command")

	var err error
	switch name {
	case "startup":
		err = s.dev.Startup()
	case "shutdown":
		err = s.dev.Shutdown()
	default:
		err = pkgerrors.New("unknown command")
	}
	resp.OK = err == nil
	return err
}

func (s *Service) SetLight(light uint8, resp *EmptyResponse) error {
	err := s.dev.SetLight(light)
	resp.OK = err == nil
	return err
}

func (s *Service) Upload(req *UploadRequest, resp *EmptyResponse) error {
	s.logger.With(zap.Int("bytes", len(req.Stream))).Debug("upload")
	err := s.dev.Upload(req.Stream)
	resp.OK = err == nil
	return err
}

func (s *Service) Play(req PlayRequest, resp *EmptyResponse) error {
	err := s.dev.Play(req.Delay, req.Loop)
	resp.OK = err == nil
	return err
}
