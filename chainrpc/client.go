package chainrpc

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/teamchain/chain"
	"xdao.co/teamchain/keys"
	"xdao.co/teamchain/model"
)

// NonceSize is the length of the random nonce in read requests.
const NonceSize = 16

// Client talks to a Chain gRPC service. It satisfies teamsync.Remote.
type Client struct {
	cc     *grpc.ClientConn
	client ChainClient

	// Signer signs read requests. Any key may read; the service only checks
	// that the request is self-consistent.
	Signer keys.Signer

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration

	// Now and Rand default to time.Now and crypto/rand.
	Now  func() time.Time
	Rand io.Reader
}

type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int
}

func Dial(target string, signer keys.Signer, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cc, err := grpc.DialContext(ctx, target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return NewClient(cc, signer), nil
}

// NewClient wraps an established connection.
func NewClient(cc *grpc.ClientConn, signer keys.Signer) *Client {
	return &Client{cc: cc, client: NewChainClient(cc), Signer: signer}
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

// FetchBlocks returns the blocks of teamKey's chain after the given hash, or
// the whole chain when after is nil.
func (c *Client) FetchBlocks(ctx context.Context, teamKey model.PublicKey, after *model.Hash) ([]chain.Block, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("chainrpc: client is not connected")
	}
	if c.Signer == nil {
		return nil, errors.New("chainrpc: client has no signer")
	}
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(c.rand(), nonce); err != nil {
		return nil, err
	}
	req, err := chain.NewReadRequest(teamKey, nonce, uint64(c.now().Unix()), after, c.Signer)
	if err != nil {
		return nil, err
	}
	body, err := req.Marshal()
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.ctx(ctx)
	defer cancel()

	reply, err := c.client.Read(ctx, wrapperspb.Bytes(body))
	if err != nil {
		return nil, mapRPC(err)
	}
	return chain.DecodeResponse(reply.GetValue())
}

// Submit appends b to teamKey's chain and returns the new head hash.
func (c *Client) Submit(ctx context.Context, teamKey model.PublicKey, b chain.Block) (model.Hash, error) {
	if c == nil || c.client == nil {
		return model.Hash{}, errors.New("chainrpc: client is not connected")
	}
	body, err := chain.BlockRequest(teamKey, b).Marshal()
	if err != nil {
		return model.Hash{}, err
	}

	ctx, cancel := c.ctx(ctx)
	defer cancel()

	reply, err := c.client.Append(ctx, wrapperspb.Bytes(body))
	if err != nil {
		return model.Hash{}, mapRPC(err)
	}
	raw, err := base64.StdEncoding.DecodeString(reply.GetValue())
	if err != nil {
		return model.Hash{}, err
	}
	h, err := model.ParseHash(raw)
	if err != nil {
		return model.Hash{}, err
	}
	if h != b.Hash() {
		return model.Hash{}, errors.New("chainrpc: service acknowledged a different block hash")
	}
	return h, nil
}

func (c *Client) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, c.Timeout)
}

func (c *Client) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Client) rand() io.Reader {
	if c.Rand != nil {
		return c.Rand
	}
	return rand.Reader
}
