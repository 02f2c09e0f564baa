package chainrpc

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"xdao.co/teamchain/chain"
	"xdao.co/teamchain/ledger"
)

var (
	// ErrRejected is returned when the service refuses a request or block as
	// invalid.
	ErrRejected = errors.New("chainrpc: rejected")
	// ErrStale is returned when an appended block does not extend the
	// service's current head.
	ErrStale = errors.New("chainrpc: block does not extend the current head")
)

func mapRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.NotFound:
		if st.Message() == ledger.ErrUnknownBlock.Error() {
			return ledger.ErrUnknownBlock
		}
		return ledger.ErrUnknownTeam
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	case codes.FailedPrecondition:
		return fmt.Errorf("%w: %s", ErrStale, st.Message())
	default:
		return err
	}
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var ce *chain.Error
	switch {
	case errors.Is(err, ledger.ErrUnknownTeam), errors.Is(err, ledger.ErrUnknownBlock):
		return status.Error(codes.NotFound, err.Error())
	case chain.IsKind(err, chain.KindBadBlockHash):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.As(err, &ce):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
