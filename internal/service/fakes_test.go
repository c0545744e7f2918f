package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"agent-chain-wallet/internal/core/domain"
	"agent-chain-wallet/internal/core/ports"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

var errReverted = errors.New("execution reverted")

// simChain is an in-memory ERC-20 with EIP-2612 permit and a counting NFT.
// Permit signatures are verified against the same typed-data digest a real
// token would compute.
type simChain struct {
	mu sync.Mutex

	available bool
	chainID   *big.Int
	name      string
	token     common.Address
	treasury  common.Address

	balances   map[common.Address]*big.Int
	nonces     map[common.Address]*big.Int
	allowances map[[2]common.Address]*big.Int
	nfts       map[common.Address]int64

	calls        []string
	permitOwners []common.Address
	transfers    []simTransfer
	balanceReads int

	failPermit       error
	failTransferFrom error
	failTransfer     error
	failBalance      error
	slowReceipts     bool // token movements land but report ErrTxUnconfirmed
	txCount          int64
}

type simTransfer struct {
	From, To common.Address
	Amount   *big.Int
}

func newSimChain(available bool) *simChain {
	return &simChain{
		available:  available,
		chainID:    big.NewInt(84532),
		name:       "Agent Chain Token",
		token:      common.HexToAddress("0x00000000000000000000000000000000000000aa"),
		treasury:   common.HexToAddress("0x00000000000000000000000000000000000000fe"),
		balances:   map[common.Address]*big.Int{},
		nonces:     map[common.Address]*big.Int{},
		allowances: map[[2]common.Address]*big.Int{},
		nfts:       map[common.Address]int64{},
	}
}

func (c *simChain) nextHash() common.Hash {
	c.txCount++
	return common.BigToHash(big.NewInt(c.txCount))
}

func (c *simChain) balanceLocked(addr common.Address) *big.Int {
	if b, ok := c.balances[addr]; ok {
		return b
	}
	return new(big.Int)
}

func (c *simChain) nonceLocked(addr common.Address) *big.Int {
	if n, ok := c.nonces[addr]; ok {
		return n
	}
	return new(big.Int)
}

func (c *simChain) setBalance(addr common.Address, v int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[addr] = big.NewInt(v)
}

func (c *simChain) balance(addr common.Address) *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return new(big.Int).Set(c.balanceLocked(addr))
}

func (c *simChain) allowance(owner, spender common.Address) *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if a, ok := c.allowances[[2]common.Address{owner, spender}]; ok {
		return new(big.Int).Set(a)
	}
	return new(big.Int)
}

func (c *simChain) callLog() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func (c *simChain) Available() bool { return c.available }

func (c *simChain) ChainID(context.Context) (*big.Int, error) { return new(big.Int).Set(c.chainID), nil }

func (c *simChain) TreasuryAddress() common.Address { return c.treasury }

func (c *simChain) TokenAddress() common.Address { return c.token }

func (c *simChain) TokenName(context.Context) (string, error) { return c.name, nil }

func (c *simChain) TokenNonce(_ context.Context, owner common.Address) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return new(big.Int).Set(c.nonceLocked(owner)), nil
}

func (c *simChain) TokenBalance(_ context.Context, owner common.Address) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balanceReads++
	if c.failBalance != nil {
		return nil, c.failBalance
	}
	return new(big.Int).Set(c.balanceLocked(owner)), nil
}

func (c *simChain) Permit(_ context.Context, call ports.PermitCall) (common.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "permit")
	c.permitOwners = append(c.permitOwners, call.Owner)
	if c.failPermit != nil {
		return common.Hash{}, c.failPermit
	}
	if call.Deadline.Cmp(big.NewInt(time.Now().Unix())) < 0 {
		return common.Hash{}, errors.New("ERC2612ExpiredSignature")
	}

	digest, err := PermitDigest(
		PermitDomain{Name: c.name, Version: "1", ChainID: c.chainID, Contract: c.token},
		PermitMessage{Owner: call.Owner, Spender: call.Spender, Value: call.Value, Nonce: c.nonceLocked(call.Owner), Deadline: call.Deadline},
	)
	if err != nil {
		return common.Hash{}, err
	}
	sig := make([]byte, 65)
	copy(sig[:32], call.Signature.R[:])
	copy(sig[32:64], call.Signature.S[:])
	sig[64] = call.Signature.V - 27
	pub, err := crypto.SigToPub(digest, sig)
	if err != nil || crypto.PubkeyToAddress(*pub) != call.Owner {
		return common.Hash{}, errors.New("ERC2612InvalidSigner")
	}

	c.nonces[call.Owner] = new(big.Int).Add(c.nonceLocked(call.Owner), big.NewInt(1))
	c.allowances[[2]common.Address{call.Owner, call.Spender}] = new(big.Int).Set(call.Value)
	return c.nextHash(), nil
}

func (c *simChain) TransferFrom(_ context.Context, from, to common.Address, amount *big.Int) (common.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "transferFrom")
	if c.failTransferFrom != nil {
		return common.Hash{}, c.failTransferFrom
	}
	key := [2]common.Address{from, c.treasury}
	allowed, ok := c.allowances[key]
	if !ok || allowed.Cmp(amount) < 0 {
		return common.Hash{}, errors.New("ERC20InsufficientAllowance")
	}
	if c.balanceLocked(from).Cmp(amount) < 0 {
		return common.Hash{}, errors.New("ERC20InsufficientBalance")
	}
	c.allowances[key] = new(big.Int).Sub(allowed, amount)
	c.move(from, to, amount)
	if c.slowReceipts {
		return c.nextHash(), fmt.Errorf("transferFrom: %w: %w", ports.ErrTxUnconfirmed, context.DeadlineExceeded)
	}
	return c.nextHash(), nil
}

func (c *simChain) Transfer(_ context.Context, to common.Address, amount *big.Int) (common.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "transfer")
	if c.failTransfer != nil {
		return common.Hash{}, c.failTransfer
	}
	if c.balanceLocked(c.treasury).Cmp(amount) < 0 {
		return common.Hash{}, errors.New("ERC20InsufficientBalance")
	}
	c.move(c.treasury, to, amount)
	return c.nextHash(), nil
}

func (c *simChain) move(from, to common.Address, amount *big.Int) {
	c.balances[from] = new(big.Int).Sub(c.balanceLocked(from), amount)
	c.balances[to] = new(big.Int).Add(c.balanceLocked(to), amount)
	c.transfers = append(c.transfers, simTransfer{From: from, To: to, Amount: new(big.Int).Set(amount)})
}

func (c *simChain) MintNFT(_ context.Context, to common.Address, _, _ string) (common.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "mint")
	c.nfts[to]++
	return c.nextHash(), nil
}

func (c *simChain) NFTBalance(_ context.Context, owner common.Address) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return big.NewInt(c.nfts[owner]), nil
}

// memWallets is a WalletRepository with a unique handle constraint.
type memWallets struct {
	mu      sync.Mutex
	wallets map[string]domain.AgentWallet
}

func newMemWallets() *memWallets {
	return &memWallets{wallets: map[string]domain.AgentWallet{}}
}

func (r *memWallets) Create(_ context.Context, w *domain.AgentWallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.wallets[w.Handle]; ok {
		return ports.ErrDuplicateWallet
	}
	r.wallets[w.Handle] = *w
	return nil
}

func (r *memWallets) GetByHandle(_ context.Context, handle string) (*domain.AgentWallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[handle]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *memWallets) UpdatePermitSignature(_ context.Context, handle string, sig domain.PermitSignature) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[handle]
	if !ok {
		return errors.New("no rows")
	}
	w.PermitSignature = sig
	r.wallets[handle] = w
	return nil
}

func (r *memWallets) Delete(_ context.Context, handle string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.wallets, handle)
	return nil
}

type memTransfers struct {
	mu      sync.Mutex
	records map[uuid.UUID]*domain.TransferRecord
	order   []uuid.UUID
}

func newMemTransfers() *memTransfers {
	return &memTransfers{records: map[uuid.UUID]*domain.TransferRecord{}}
}

func (r *memTransfers) Create(_ context.Context, rec *domain.TransferRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec.ReferenceID != nil {
		for _, existing := range r.records {
			if existing.ReferenceID != nil && *existing.ReferenceID == *rec.ReferenceID {
				return ports.ErrDuplicateReference
			}
		}
	}
	cp := *rec
	r.records[rec.ID] = &cp
	r.order = append(r.order, rec.ID)
	return nil
}

func (r *memTransfers) GetByReference(_ context.Context, ref string) (*domain.TransferRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ReferenceID != nil && *rec.ReferenceID == ref {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memTransfers) update(id uuid.UUID, fn func(*domain.TransferRecord)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return errors.New("no rows")
	}
	fn(rec)
	return nil
}

func (r *memTransfers) MarkPermitted(_ context.Context, id uuid.UUID, tx common.Hash) error {
	return r.update(id, func(rec *domain.TransferRecord) {
		rec.Status = domain.TransferStatusPermitted
		rec.PermitTxHash = &tx
	})
}

func (r *memTransfers) MarkSubmitted(_ context.Context, id uuid.UUID, tx common.Hash) error {
	return r.update(id, func(rec *domain.TransferRecord) {
		rec.Status = domain.TransferStatusSubmitted
		rec.TransferTxHash = &tx
	})
}

func (r *memTransfers) MarkConfirmed(_ context.Context, id uuid.UUID, tx common.Hash) error {
	return r.update(id, func(rec *domain.TransferRecord) {
		rec.Status = domain.TransferStatusConfirmed
		rec.TransferTxHash = &tx
	})
}

func (r *memTransfers) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	return r.update(id, func(rec *domain.TransferRecord) {
		rec.Status = domain.TransferStatusFailed
		rec.FailureReason = &reason
	})
}

func (r *memTransfers) ListByHandle(_ context.Context, handle string, limit int) ([]domain.TransferRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TransferRecord
	for i := len(r.order) - 1; i >= 0 && len(out) < limit; i-- {
		rec := r.records[r.order[i]]
		if rec.FromHandle == handle || (rec.ToHandle != nil && *rec.ToHandle == handle) {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *memTransfers) get(id uuid.UUID) domain.TransferRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.records[id]
}

func (r *memTransfers) only() domain.TransferRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.order) != 1 {
		panic("expected exactly one transfer record")
	}
	return *r.records[r.order[0]]
}

// memCache mirrors the generation semantics of the Redis balance cache.
type memCache struct {
	mu          sync.Mutex
	entries     map[string]domain.CachedBalance
	generations map[string]int64
	invalidated []string
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]domain.CachedBalance{}, generations: map[string]int64{}}
}

func (c *memCache) Get(_ context.Context, handle string) (*domain.CachedBalance, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	gen := c.generations[handle]
	e, ok := c.entries[handle]
	if !ok {
		return nil, gen, nil
	}
	return &e, gen, nil
}

func (c *memCache) Set(_ context.Context, e domain.CachedBalance) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e.Generation != c.generations[e.Handle] {
		return nil
	}
	c.entries[e.Handle] = e
	return nil
}

func (c *memCache) Invalidate(_ context.Context, handle string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[handle]++
	delete(c.entries, handle)
	c.invalidated = append(c.invalidated, handle)
	return nil
}

func (c *memCache) invalidations() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.invalidated...)
}

// memLocker is an in-process keyed mutex that records every acquisition.
type memLocker struct {
	mu       sync.Mutex
	locks    map[string]*sync.Mutex
	acquired []string
	released []string
}

func newMemLocker() *memLocker {
	return &memLocker{locks: map[string]*sync.Mutex{}}
}

func (l *memLocker) Lock(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	l.mu.Lock()
	l.acquired = append(l.acquired, key)
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		l.released = append(l.released, key)
		l.mu.Unlock()
		m.Unlock()
	}, nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []domain.WalletEvent
}

func (s *recordingSink) Emit(_ context.Context, ev domain.WalletEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) kinds() []domain.EventKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.EventKind, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.Kind)
	}
	return out
}

func ethMaxUint256() *big.Int {
	return new(big.Int).Set(math.MaxBig256)
}

func fundRequest(w *domain.AgentWallet) ports.FundRequest {
	return ports.FundRequest{Handle: w.Handle, Address: w.Address}
}

func permitCall(owner, spender common.Address, sig domain.SplitSignature) ports.PermitCall {
	return ports.PermitCall{
		Owner:     owner,
		Spender:   spender,
		Value:     ethMaxUint256(),
		Deadline:  ethMaxUint256(),
		Signature: sig,
	}
}

func mintRequest(handle string) ports.MintRequest {
	return ports.MintRequest{
		Handle:     handle,
		ArtworkURL: "https://cdn.example.com/art/1.png",
		Title:      "First words",
	}
}
