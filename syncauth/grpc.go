package syncauth

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// UnaryClientInterceptor returns a gRPC unary client interceptor that attaches
// the stored token as "authorization: Bearer <token>" outgoing metadata
func UnaryClientInterceptor(cfg *Config) grpc.UnaryClientInterceptor {
	auth := NewAuthenticator(cfg)
	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		return invoker(auth.authenticateContext(ctx, method), method, req, reply, cc, opts...)
	}
}

// StreamClientInterceptor is the streaming counterpart of UnaryClientInterceptor
func StreamClientInterceptor(cfg *Config) grpc.StreamClientInterceptor {
	auth := NewAuthenticator(cfg)
	return func(
		ctx context.Context,
		desc *grpc.StreamDesc,
		cc *grpc.ClientConn,
		method string,
		streamer grpc.Streamer,
		opts ...grpc.CallOption,
	) (grpc.ClientStream, error) {
		return streamer(auth.authenticateContext(ctx, method), desc, cc, method, opts...)
	}
}

// authenticateContext applies the request rules to an RPC. Public methods and
// calls made without a token keep the caller's context.
func (a *Authenticator) authenticateContext(ctx context.Context, method string) context.Context {
	if a.cfg.isPublic(method) {
		a.cfg.metrics.observeRequest(outcomePublic)
		return ctx
	}

	token, ok, err := a.cfg.store.Get(ctx, KeyAuthToken)
	if err != nil {
		a.logStoreFailure(method, err)
		a.cfg.metrics.observeRequest(outcomeStoreErr)
		return ctx
	}
	if !ok || token == "" {
		a.cfg.metrics.observeRequest(outcomeNoToken)
		return ctx
	}

	a.cfg.metrics.observeRequest(outcomeAttached)
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}
