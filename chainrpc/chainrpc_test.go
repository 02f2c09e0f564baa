package chainrpc

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/teamchain/chain"
	"xdao.co/teamchain/keys"
	"xdao.co/teamchain/ledger"
	"xdao.co/teamchain/model"
)

func testSigner(t *testing.T, b byte) *keys.Ed25519Signer {
	t.Helper()
	s, err := keys.Ed25519SignerFromSeed(bytes.Repeat([]byte{b}, ed25519.SeedSize))
	require.NoError(t, err)
	return s
}

func startServer(t *testing.T, srv *Server) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	s := grpc.NewServer()
	RegisterChainServer(s, srv)
	go func() {
		_ = s.Serve(lis)
	}()
	t.Cleanup(s.Stop)

	dialer := func(ctx context.Context, _ string) (net.Conn, error) { return lis.Dial() }
	cc, err := grpc.DialContext(
		context.Background(),
		"bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cc.Close() })
	return cc
}

func TestChainRPC_SubmitAndFetch(t *testing.T) {
	ctx := context.Background()
	l := ledger.New()
	cc := startServer(t, &Server{Ledger: l})

	admin := testSigner(t, 1)
	reader := testSigner(t, 2)
	client := NewClient(cc, reader)
	client.Timeout = 2 * time.Second

	genesis, err := chain.NewCreateChainBlock(model.Info{Name: "Acme"}, admin)
	require.NoError(t, err)
	h0, err := client.Submit(ctx, admin.PublicKey(), genesis)
	require.NoError(t, err)
	require.Equal(t, genesis.Hash(), h0)

	seconds := uint64(90)
	b1, err := chain.NewAppendBlock(h0, &chain.SetPolicy{Policy: model.PolicySettings{TemporaryApprovalSeconds: &seconds}}, admin)
	require.NoError(t, err)
	_, err = client.Submit(ctx, admin.PublicKey(), b1)
	require.NoError(t, err)

	all, err := client.FetchBlocks(ctx, admin.PublicKey(), nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, genesis.Payload, all[0].Payload)
	require.Equal(t, []byte(b1.Signature), []byte(all[1].Signature))

	st, err := chain.VerifyAndDigest(all, chain.State{Team: model.Team{PublicKey: admin.PublicKey()}})
	require.NoError(t, err)
	require.Equal(t, uint64(90), st.Team.Policy.ApprovalSeconds())

	tail, err := client.FetchBlocks(ctx, admin.PublicKey(), &h0)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	require.Equal(t, b1.Hash(), tail[0].Hash())
}

func TestChainRPC_ErrorMapping(t *testing.T) {
	ctx := context.Background()
	l := ledger.New()
	cc := startServer(t, &Server{Ledger: l})

	admin := testSigner(t, 3)
	client := NewClient(cc, admin)

	_, err := client.FetchBlocks(ctx, admin.PublicKey(), nil)
	require.ErrorIs(t, err, ledger.ErrUnknownTeam)

	genesis, err := chain.NewCreateChainBlock(model.Info{Name: "Acme"}, admin)
	require.NoError(t, err)
	h0, err := client.Submit(ctx, admin.PublicKey(), genesis)
	require.NoError(t, err)

	bogus := chain.HashPayload("bogus")
	_, err = client.FetchBlocks(ctx, admin.PublicKey(), &bogus)
	require.ErrorIs(t, err, ledger.ErrUnknownBlock)

	b1, err := chain.NewAppendBlock(h0, &chain.SetTeamInfo{Info: model.Info{Name: "B"}}, admin)
	require.NoError(t, err)
	_, err = client.Submit(ctx, admin.PublicKey(), b1)
	require.NoError(t, err)

	// Still linked to genesis while the head has moved on.
	stale, err := chain.NewAppendBlock(h0, &chain.SetTeamInfo{Info: model.Info{Name: "C"}}, admin)
	require.NoError(t, err)
	_, err = client.Submit(ctx, admin.PublicKey(), stale)
	require.ErrorIs(t, err, ErrStale)

	forged, err := chain.NewAppendBlock(b1.Hash(), &chain.SetTeamInfo{Info: model.Info{Name: "D"}}, testSigner(t, 4))
	require.NoError(t, err)
	_, err = client.Submit(ctx, admin.PublicKey(), forged)
	require.ErrorIs(t, err, ErrRejected)
}

func TestServer_ReadRejectsNonReadPayloads(t *testing.T) {
	srv := &Server{Ledger: ledger.New()}
	admin := testSigner(t, 5)

	req, err := chain.NewRequest(&chain.CreateChain{TeamPublicKey: admin.PublicKey(), TeamInfo: model.Info{Name: "x"}}, admin)
	require.NoError(t, err)
	body, err := req.Marshal()
	require.NoError(t, err)
	_, err = srv.Read(context.Background(), wrapperspb.Bytes(body))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	// Tampered signature.
	read, err := chain.NewReadRequest(admin.PublicKey(), []byte("nonce"), 1, nil, admin)
	require.NoError(t, err)
	read.Signature = append(model.Signature(nil), read.Signature...)
	read.Signature[0] ^= 0xff
	body, err = read.Marshal()
	require.NoError(t, err)
	_, err = srv.Read(context.Background(), wrapperspb.Bytes(body))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = srv.Read(context.Background(), wrapperspb.Bytes([]byte("{not json")))
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_ReadEnforcesSkew(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := ledger.New()
	admin := testSigner(t, 6)
	genesis, err := chain.NewCreateChainBlock(model.Info{Name: "Acme"}, admin)
	require.NoError(t, err)
	_, err = l.Append(admin.PublicKey(), genesis)
	require.NoError(t, err)

	srv := &Server{Ledger: l, MaxSkew: time.Minute, Now: func() time.Time { return now }}

	read := func(at time.Time) error {
		req, err := chain.NewReadRequest(admin.PublicKey(), []byte("n"), uint64(at.Unix()), nil, admin)
		require.NoError(t, err)
		body, err := req.Marshal()
		require.NoError(t, err)
		_, err = srv.Read(context.Background(), wrapperspb.Bytes(body))
		return err
	}

	require.NoError(t, read(now.Add(-30*time.Second)))
	require.Equal(t, codes.InvalidArgument, status.Code(read(now.Add(-2*time.Minute))))
	require.Equal(t, codes.InvalidArgument, status.Code(read(now.Add(2*time.Minute))))
}

func TestServer_MissingLedger(t *testing.T) {
	var srv Server
	_, err := srv.Append(context.Background(), wrapperspb.Bytes(nil))
	require.Equal(t, codes.FailedPrecondition, status.Code(err))
}
