// Package chainrpc carries team chain reads and appends over gRPC.
//
// Requests and responses are the JSON documents defined by package chain,
// wrapped in protobuf well-known types.
package chainrpc

import (
	"context"
	"log"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/teamchain/chain"
	"xdao.co/teamchain/ledger"
)

// Server exposes a ledger.Ledger over the Chain gRPC service.
type Server struct {
	UnimplementedChainServer
	Ledger *ledger.Ledger

	// MaxSkew bounds how far a read request's timestamp may be from the
	// server clock. Zero disables the check.
	MaxSkew time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
	// Logger is optional.
	Logger *log.Logger
}

func (s *Server) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Server) Read(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	if s == nil || s.Ledger == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing ledger")
	}
	req, err := chain.DecodeRequest(in.GetValue())
	if err != nil {
		return nil, mapErr(err)
	}
	if err := req.Verify(); err != nil {
		return nil, mapErr(err)
	}
	p, err := chain.DecodePayload(req.Payload)
	if err != nil {
		return nil, mapErr(err)
	}
	rb, ok := p.(*chain.ReadBlock)
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "read request must carry read_block")
	}
	if s.MaxSkew > 0 {
		at := time.Unix(int64(rb.UnixSeconds), 0)
		if d := s.now().Sub(at); d > s.MaxSkew || d < -s.MaxSkew {
			return nil, status.Error(codes.InvalidArgument, "read request timestamp outside allowed skew")
		}
	}

	blocks, err := s.Ledger.Since(rb.TeamPublicKey, rb.LastBlockHash)
	if err != nil {
		return nil, mapErr(err)
	}
	out, err := chain.EncodeResponse(blocks)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	s.logf("read team=%s requester=%s blocks=%d", rb.TeamPublicKey, req.PublicKey, len(blocks))
	return wrapperspb.Bytes(out), nil
}

func (s *Server) Append(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	_ = ctx
	if s == nil || s.Ledger == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing ledger")
	}
	req, err := chain.DecodeRequest(in.GetValue())
	if err != nil {
		return nil, mapErr(err)
	}
	h, err := s.Ledger.Append(req.PublicKey, req.Block())
	if err != nil {
		s.logf("append team=%s rejected: %v", req.PublicKey, err)
		return nil, mapErr(err)
	}
	s.logf("append team=%s head=%s", req.PublicKey, h)
	return wrapperspb.String(h.String()), nil
}
