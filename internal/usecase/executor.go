package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/trebuchet-org/catapult/internal/domain"
)

// fundingThreshold is 1000 ETH; fallback accounts below it are topped up
// to fundingAmount (10000 ETH).
var (
	fundingThreshold = new(big.Int).Mul(big.NewInt(1000), big.NewInt(1e18))
	fundingAmount, _ = new(big.Int).SetString("21e19e0c9bab2400000", 16)
)

// executor runs one scenario and is not reused. Each run owns its
// ExecutionContext and symbol table.
type executor struct {
	dialer     ChainDialer
	codec      CallCodec
	artifacts  ArtifactRepository
	nodes      NodeManager
	progress   ProgressSink
	log        *slog.Logger
	policy     domain.DeployAddressPolicy
	rpcTimeout time.Duration
	autoStart  bool

	client ChainClient
	ectx   *domain.ExecutionContext
	abis   map[string]json.RawMessage
}

func (e *executor) run(ctx context.Context, def *domain.ScenarioDefinition, rpcURL string) *domain.ExecutionResult {
	runID := uuid.NewString()
	e.log = e.log.With("run", runID, "scenario", def.Name)
	e.abis = make(map[string]json.RawMessage)
	e.ectx = &domain.ExecutionContext{
		RunID:      runID,
		Definition: def,
		State:      domain.StateNotStarted,
		StartedAt:  time.Now(),
	}

	result := &domain.ExecutionResult{
		RunID:        runID,
		ScenarioName: def.Name,
		TotalSteps:   len(def.Steps),
	}

	e.trace(domain.TraceEvent{Type: domain.TraceRunStart, Message: def.Name,
		Data: map[string]any{"rpcUrl": rpcURL, "steps": len(def.Steps)}})

	fail := func(step *domain.Step, err error) *domain.ExecutionResult {
		e.ectx.State = domain.StateFailed
		if step != nil {
			err = &domain.StepError{Index: step.Index, Kind: step.Kind, Err: err}
			result.FailedStep = step.Index
			result.FailedKind = step.Kind
		}
		result.Error = err.Error()
		e.trace(domain.TraceEvent{Type: domain.TraceRunFail, Error: err.Error()})
		e.log.Error("scenario failed", "error", err)
		return e.finish(result)
	}

	e.ectx.State = domain.StatePreparing
	client, err := e.dialer.Dial(ctx, rpcURL)
	if err != nil {
		e.ectx.Symbols = domain.NewSymbolTable(def.Contracts, nil)
		return fail(nil, fmt.Errorf("failed to connect to %s: %w", rpcURL, err))
	}
	e.client = client
	defer client.Close()

	if err := e.prepare(ctx, def, rpcURL); err != nil {
		return fail(nil, fmt.Errorf("preparation failed: %w", err))
	}

	e.ectx.State = domain.StateRunningSteps
	for i := range def.Steps {
		step := def.Steps[i]
		if err := ctx.Err(); err != nil {
			return fail(&step, fmt.Errorf("scenario timed out or was cancelled: %w", err))
		}

		e.progress.OnProgress(ctx, ProgressEvent{
			Stage:   "step",
			Current: step.Index,
			Total:   len(def.Steps),
			Message: fmt.Sprintf("%s: %s", step.Kind, step.Title()),
			Spinner: true,
		})
		e.trace(domain.TraceEvent{Type: domain.TraceStepStart, Step: step.Index, Kind: step.Kind, Message: step.Title()})

		started := time.Now()
		out, err := e.dispatch(ctx, step)
		if err != nil {
			e.trace(domain.TraceEvent{Type: domain.TraceStepFail, Step: step.Index, Kind: step.Kind,
				Duration: time.Since(started), Error: err.Error()})
			return fail(&step, err)
		}

		e.trace(domain.TraceEvent{Type: domain.TraceStepComplete, Step: step.Index, Kind: step.Kind,
			Duration: time.Since(started), Data: out.data, LowConfidence: out.lowConfidence})
		result.StepsExecuted++
		e.log.Debug("step completed", "step", step.Index, "kind", step.Kind)
	}

	e.ectx.State = domain.StateCompleted
	result.Success = true
	e.trace(domain.TraceEvent{Type: domain.TraceRunComplete, Message: def.Name})
	return e.finish(result)
}

func (e *executor) finish(result *domain.ExecutionResult) *domain.ExecutionResult {
	result.State = e.ectx.State
	result.ExecutionTime = time.Since(e.ectx.StartedAt)
	result.GasUsed = e.ectx.GasUsed
	result.Trace = e.ectx.Trace
	result.Warnings = e.ectx.Warnings
	if e.ectx.Symbols != nil {
		result.Artifacts = e.ectx.Symbols.Artifacts(e.ectx.Definition.Name)
	}
	return result
}

func (e *executor) trace(ev domain.TraceEvent) {
	ev.ID = uuid.NewString()
	ev.RunID = e.ectx.RunID
	ev.Timestamp = time.Now()
	e.ectx.Trace = append(e.ectx.Trace, ev)
}

func (e *executor) warn(msg string, args ...any) {
	e.log.Warn(msg, args...)
	text := msg
	if len(args) > 0 {
		text = fmt.Sprintf("%s %v", msg, args)
	}
	e.ectx.Warnings = append(e.ectx.Warnings, text)
	e.trace(domain.TraceEvent{Type: domain.TraceWarning, Message: text})
}

// rpc bounds a single node call.
func (e *executor) rpc(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.rpcTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.rpcTimeout)
}

// prepare checks the node, loads the account pool and binds roles.
func (e *executor) prepare(ctx context.Context, def *domain.ScenarioDefinition, rpcURL string) error {
	reachable := e.checkNode(ctx)
	if !reachable && e.autoStart && e.nodes != nil {
		started, err := e.nodes.EnsureRunning(ctx, rpcURL)
		switch {
		case err != nil:
			e.warn("could not start a local node", "rpcUrl", rpcURL, "error", err)
		case started:
			e.progress.Info(fmt.Sprintf("Started local anvil node for %s", rpcURL))
			reachable = e.checkNode(ctx)
		}
	}
	if !reachable {
		e.warn("node is not reachable, continuing with well-known development accounts", "rpcUrl", rpcURL)
	}

	pool := e.loadAccounts(ctx, reachable)
	e.ectx.Symbols = domain.NewSymbolTable(def.Contracts, pool)

	for _, role := range def.Roles {
		if err := e.bindRole(ctx, role); err != nil {
			return err
		}
	}
	return nil
}

func (e *executor) checkNode(ctx context.Context) bool {
	rctx, cancel := e.rpc(ctx)
	defer cancel()
	block, err := e.client.BlockNumber(rctx)
	if err != nil {
		e.log.Debug("node liveness check failed", "error", err)
		return false
	}
	e.log.Debug("node is live", "block", block)
	return true
}

func (e *executor) loadAccounts(ctx context.Context, reachable bool) *domain.AccountPool {
	if reachable {
		rctx, cancel := e.rpc(ctx)
		accounts, err := e.client.Accounts(rctx)
		cancel()
		if err == nil && len(accounts) > 0 {
			known := domain.FallbackAccountPool().Keys()
			return &domain.AccountPool{
				Source: domain.AccountsFromNode,
				Accounts: lo.Map(accounts, func(a common.Address, _ int) domain.Account {
					return domain.Account{Address: a, PrivateKey: known[a]}
				}),
			}
		}
		e.warn("node returned no accounts, using well-known development accounts", "error", err)
	}

	pool := domain.FallbackAccountPool()
	if reachable {
		e.fundAccounts(ctx, pool)
	}
	return pool
}

// fundAccounts tops up fallback accounts. Failures are only logged.
func (e *executor) fundAccounts(ctx context.Context, pool *domain.AccountPool) {
	for _, acc := range pool.Accounts {
		rctx, cancel := e.rpc(ctx)
		balance, err := e.client.Balance(rctx, acc.Address)
		if err == nil && balance.Cmp(fundingThreshold) < 0 {
			err = e.client.SetBalance(rctx, acc.Address.Hex(), fundingAmount)
		}
		cancel()
		if err != nil {
			e.log.Debug("could not fund account", "address", acc.Address, "error", err)
		}
	}
}

func (e *executor) bindRole(ctx context.Context, role domain.Role) error {
	symbols := e.ectx.Symbols
	pool := symbols.Pool()
	binding := domain.RoleBinding{Address: strings.TrimSpace(role.Address), PrivateKey: role.PrivateKey}

	switch {
	case strings.HasPrefix(binding.Address, "$"):
		acc, ok := pool.Lookup(binding.Address)
		if !ok {
			e.warn("role references an unknown account, it will fail when used", "role", role.Name, "account", binding.Address)
			break
		}
		binding.Address = acc.Address.Hex()
		if binding.PrivateKey == "" && pool.Source == domain.AccountsFromFallback {
			binding.PrivateKey = acc.PrivateKey
		}
	case binding.Address == "" && role.PrivateKey != "":
		addr, err := domain.AddressFromPrivateKey(role.PrivateKey)
		if err != nil {
			return fmt.Errorf("role %s: %w", role.Name, err)
		}
		binding.Address = addr.Hex()
	}
	symbols.BindRole(role.Name, binding)

	if role.Balance == "" {
		return nil
	}
	wei, err := domain.ParseAmount(role.Balance)
	if err != nil {
		return fmt.Errorf("role %s balance: %w", role.Name, err)
	}
	if !domain.IsHexAddress(binding.Address) {
		return &domain.UnresolvedSymbolError{Kind: "role", Name: role.Name}
	}
	rctx, cancel := e.rpc(ctx)
	defer cancel()
	return e.client.SetBalance(rctx, binding.Address, wei)
}

// stepOutput is recorded on the step_complete trace event
type stepOutput struct {
	data          map[string]any
	lowConfidence bool
}

func (e *executor) dispatch(ctx context.Context, step domain.Step) (stepOutput, error) {
	switch p := step.Payload.(type) {
	case domain.SendPayload:
		return e.send(ctx, step, p)
	case domain.CallPayload:
		return e.call(ctx, p)
	case domain.BlocksPayload:
		return e.mine(ctx, p)
	case domain.TimeTravelPayload:
		return e.timeTravel(ctx, p)
	case domain.SnapshotPayload:
		return e.snapshot(ctx, p)
	case domain.RevertPayload:
		return e.revert(ctx, p)
	case domain.AssertPayload:
		return e.assert(p)
	case domain.DeployPayload:
		return e.deploy(ctx, step, p)
	case domain.SetBalancePayload:
		return e.setBalance(ctx, p)
	case domain.SetStoragePayload:
		return e.setStorage(ctx, p)
	case domain.LabelPayload:
		return e.label(p)
	case domain.ActionPayload:
		return e.action(ctx, step, p)
	}
	return stepOutput{}, &domain.UnsupportedStepError{Kind: string(step.Kind)}
}

// redirect re-runs a step body as another kind
func (e *executor) redirect(ctx context.Context, step domain.Step, fields domain.Fields, kind domain.StepKind) (stepOutput, error) {
	payload, err := domain.DecodePayload(kind, fields)
	if err != nil {
		return stepOutput{}, err
	}
	e.log.Info("step redirected", "step", step.Index, "from", step.Kind, "to", kind)
	step.Kind = kind
	step.Fields = fields
	step.Payload = payload
	return e.dispatch(ctx, step)
}

// kindNamedBy returns the kind a body field names, if any
func kindNamedBy(fields domain.Fields, key string) (domain.StepKind, bool) {
	v, ok := fields.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || !domain.IsStepKindToken(s) {
		return "", false
	}
	return domain.Canonicalize(s).Kind, true
}

func (e *executor) action(ctx context.Context, step domain.Step, p domain.ActionPayload) (stepOutput, error) {
	if kind, ok := kindNamedBy(p.Fields, "type"); ok {
		return e.redirect(ctx, step, p.Fields.Without("type"), kind)
	}
	if kind, ok := kindNamedBy(p.Fields, "value"); ok {
		return e.redirect(ctx, step, p.Fields.Without("value"), kind)
	}
	return e.redirect(ctx, step, p.Fields, domain.StepSend)
}

func (e *executor) send(ctx context.Context, step domain.Step, p domain.SendPayload) (stepOutput, error) {
	if p.Incomplete() {
		if kind, ok := kindNamedBy(step.Fields, "value"); ok && kind != domain.StepSend {
			return e.redirect(ctx, step, step.Fields.Without("value"), kind)
		}
		return stepOutput{}, fmt.Errorf("%w: send needs from, to and fn (got %v)",
			domain.ErrInsufficientStepData, step.Fields.Keys())
	}

	symbols := e.ectx.Symbols
	from, err := symbols.ResolveSender(p.From)
	if err != nil {
		return stepOutput{}, err
	}
	to, err := symbols.ResolveTarget(p.To)
	if err != nil {
		return stepOutput{}, err
	}
	args, err := symbols.ResolveArgs(p.Args)
	if err != nil {
		return stepOutput{}, err
	}
	data, err := e.codec.EncodeCall(p.Fn, args, e.abiFor(ctx, p.To))
	if err != nil {
		return stepOutput{}, err
	}

	tx := domain.TxRequest{From: from, To: &to, Data: data, PrivateKey: e.keyFor(p.From, from)}
	if p.Value != "" {
		if tx.Value, err = domain.ParseAmount(p.Value); err != nil {
			return stepOutput{}, fmt.Errorf("value: %w", err)
		}
	}

	receipt, err := e.transact(ctx, step, tx)
	if err != nil {
		return stepOutput{}, err
	}
	out := stepOutput{data: map[string]any{
		"from":    from.Hex(),
		"to":      to.Hex(),
		"fn":      p.Fn,
		"txHash":  receipt.TxHash.Hex(),
		"gasUsed": receipt.GasUsed,
	}}
	// Status and gas are unknown until the receipt shows up.
	if !receipt.Mined {
		out.lowConfidence = true
		out.data["mined"] = false
	}
	return out, nil
}

// transact sends a transaction and checks its receipt. A transaction that is
// not mined yet gets one more receipt lookup.
func (e *executor) transact(ctx context.Context, step domain.Step, tx domain.TxRequest) (*domain.TxReceipt, error) {
	if step.GasLimit > 0 {
		tx.Gas = step.GasLimit
	}
	if step.GasPrice != "" {
		price, err := domain.ParseAmount(step.GasPrice)
		if err != nil {
			return nil, fmt.Errorf("gas_price: %w", err)
		}
		tx.GasPrice = price
	}

	rctx, cancel := e.rpc(ctx)
	receipt, err := e.client.SendTransaction(rctx, tx)
	cancel()
	if err != nil {
		return nil, err
	}

	if !receipt.Mined {
		rctx, cancel := e.rpc(ctx)
		fetched, err := e.client.TransactionReceipt(rctx, receipt.TxHash)
		cancel()
		if err == nil && fetched != nil && fetched.Mined {
			receipt = fetched
		} else {
			e.warn("transaction receipt not available yet", "tx", receipt.TxHash.Hex())
			return receipt, nil
		}
	}

	e.ectx.GasUsed += receipt.GasUsed
	if receipt.Status != 1 {
		return receipt, &domain.RPCError{
			Method: "eth_sendTransaction",
			Err:    fmt.Errorf("transaction %s reverted", receipt.TxHash.Hex()),
		}
	}
	return receipt, nil
}

func (e *executor) call(ctx context.Context, p domain.CallPayload) (stepOutput, error) {
	if p.To == "" || p.Fn == "" {
		return stepOutput{}, fmt.Errorf("%w: call needs to and fn", domain.ErrInsufficientStepData)
	}

	symbols := e.ectx.Symbols
	to, err := symbols.ResolveTarget(p.To)
	if err != nil {
		return stepOutput{}, err
	}
	req := domain.CallRequest{To: to}
	if p.From != "" {
		if req.From, err = symbols.ResolveSender(p.From); err != nil {
			return stepOutput{}, err
		}
	}
	args, err := symbols.ResolveArgs(p.Args)
	if err != nil {
		return stepOutput{}, err
	}

	contractABI := e.abiFor(ctx, p.To)
	if req.Data, err = e.codec.EncodeCall(p.Fn, args, contractABI); err != nil {
		return stepOutput{}, err
	}

	rctx, cancel := e.rpc(ctx)
	raw, err := e.client.Call(rctx, req)
	cancel()
	if err != nil {
		return stepOutput{}, err
	}

	value, err := e.codec.DecodeResult(p.Fn, raw, contractABI)
	if err != nil {
		return stepOutput{}, err
	}

	if p.SaveAs != "" {
		symbols.BindVar(strings.TrimPrefix(p.SaveAs, "$"), value)
	}

	out := stepOutput{data: map[string]any{"to": to.Hex(), "fn": p.Fn, "result": value}}
	if p.Expect != "" {
		if err := domain.CheckExpectation(value, p.Expect); err != nil {
			return out, err
		}
	}
	return out, nil
}

func (e *executor) mine(ctx context.Context, p domain.BlocksPayload) (stepOutput, error) {
	rctx, cancel := e.rpc(ctx)
	defer cancel()
	if err := e.client.Mine(rctx, p.Blocks); err != nil {
		return stepOutput{}, err
	}
	return stepOutput{data: map[string]any{"blocks": p.Blocks}}, nil
}

func (e *executor) timeTravel(ctx context.Context, p domain.TimeTravelPayload) (stepOutput, error) {
	rctx, cancel := e.rpc(ctx)
	defer cancel()
	if err := e.client.IncreaseTime(rctx, p.Seconds); err != nil {
		return stepOutput{}, err
	}
	return stepOutput{data: map[string]any{"seconds": p.Seconds}}, nil
}

func (e *executor) snapshot(ctx context.Context, p domain.SnapshotPayload) (stepOutput, error) {
	symbols := e.ectx.Symbols
	name := p.Name
	if name == "" {
		name = fmt.Sprintf("snapshot_%d", symbols.SnapshotCount())
	}

	rctx, cancel := e.rpc(ctx)
	defer cancel()
	id, err := e.client.Snapshot(rctx)
	if err != nil {
		return stepOutput{}, err
	}
	symbols.BindSnapshot(name, id)
	return stepOutput{data: map[string]any{"name": name}}, nil
}

func (e *executor) revert(ctx context.Context, p domain.RevertPayload) (stepOutput, error) {
	if p.Name == "" {
		return stepOutput{}, fmt.Errorf("%w: revert needs a snapshot name", domain.ErrInsufficientStepData)
	}
	id, ok := e.ectx.Symbols.Snapshot(p.Name)
	if !ok {
		return stepOutput{}, &domain.UnresolvedSymbolError{Kind: "snapshot", Name: p.Name}
	}

	rctx, cancel := e.rpc(ctx)
	defer cancel()
	if err := e.client.Revert(rctx, id); err != nil {
		return stepOutput{}, err
	}
	return stepOutput{data: map[string]any{"name": p.Name}}, nil
}

func (e *executor) assert(p domain.AssertPayload) (stepOutput, error) {
	if p.Expect == "" {
		return stepOutput{}, fmt.Errorf("%w: assert needs expect", domain.ErrInsufficientStepData)
	}
	actual := p.Value
	if strings.HasPrefix(strings.TrimSpace(actual), "$") {
		v, err := e.ectx.Symbols.ResolveSymbol(actual)
		if err != nil {
			return stepOutput{}, err
		}
		actual = v
	}
	out := stepOutput{data: map[string]any{"value": actual, "expect": p.Expect}}
	return out, domain.CheckExpectation(actual, p.Expect)
}

func (e *executor) deploy(ctx context.Context, step domain.Step, p domain.DeployPayload) (stepOutput, error) {
	if p.Contract == "" {
		return stepOutput{}, fmt.Errorf("%w: deploy needs contract", domain.ErrInsufficientStepData)
	}

	symbols := e.ectx.Symbols
	fromRef := p.From
	if fromRef == "" {
		fromRef = "$acc0"
	}
	from, err := symbols.ResolveSender(fromRef)
	if err != nil {
		return stepOutput{}, err
	}

	bytecode, contractABI, err := e.resolveBytecode(ctx, p)
	if err != nil {
		return stepOutput{}, err
	}
	args, err := symbols.ResolveArgs(p.Args)
	if err != nil {
		return stepOutput{}, err
	}
	data, err := e.codec.EncodeDeployment(bytecode, contractABI, args)
	if err != nil {
		return stepOutput{}, err
	}

	tx := domain.TxRequest{From: from, Data: data, PrivateKey: e.keyFor(fromRef, from)}
	if p.Value != "" {
		if tx.Value, err = domain.ParseAmount(p.Value); err != nil {
			return stepOutput{}, fmt.Errorf("value: %w", err)
		}
	}

	receipt, err := e.transact(ctx, step, tx)
	if err != nil {
		return stepOutput{}, err
	}

	out := stepOutput{data: map[string]any{"contract": p.Contract, "txHash": receipt.TxHash.Hex()}}
	var address common.Address
	if receipt.ContractAddress != nil {
		address = *receipt.ContractAddress
	} else {
		if e.policy == domain.DeployAddressStrict {
			return out, fmt.Errorf("%w for %s (tx %s)", domain.ErrZeroDeployAddress, p.Contract, receipt.TxHash.Hex())
		}
		e.warn("deployment address unknown, binding the zero address", "contract", p.Contract, "tx", receipt.TxHash.Hex())
		out.lowConfidence = true
	}

	symbols.BindContract(p.Contract, address.Hex())
	if len(contractABI) > 0 {
		e.abis[p.Contract] = contractABI
	}
	out.data["address"] = address.Hex()
	return out, nil
}

// resolveBytecode finds creation code and ABI for a deploy step: inline hex,
// a $artifacts:Name.bytecode reference, or the artifact named like the
// contract.
func (e *executor) resolveBytecode(ctx context.Context, p domain.DeployPayload) (string, json.RawMessage, error) {
	ref := strings.TrimSpace(p.Bytecode)

	if name, ok := strings.CutPrefix(ref, "$artifacts:"); ok {
		name, field, _ := strings.Cut(name, ".")
		if field != "" && field != "bytecode" {
			return "", nil, fmt.Errorf("unsupported artifact field %q (only bytecode can be deployed)", field)
		}
		artifact, err := e.findArtifact(ctx, name)
		if err != nil {
			return "", nil, err
		}
		return artifact.Bytecode, artifact.ABI, nil
	}

	if ref != "" {
		var contractABI json.RawMessage
		if artifact, err := e.findArtifact(ctx, p.Contract); err == nil {
			contractABI = artifact.ABI
		}
		return ref, contractABI, nil
	}

	artifact, err := e.findArtifact(ctx, p.Contract)
	if err != nil {
		return "", nil, err
	}
	return artifact.Bytecode, artifact.ABI, nil
}

func (e *executor) findArtifact(ctx context.Context, name string) (*domain.ContractArtifact, error) {
	if e.artifacts == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, name)
	}
	artifact, err := e.artifacts.FindArtifact(ctx, name)
	if err != nil {
		return nil, err
	}
	if !artifact.HasBytecode() {
		return nil, fmt.Errorf("%w: %s has no creation bytecode", domain.ErrArtifactNotFound, name)
	}
	return artifact, nil
}

// abiFor returns the ABI known for a contract reference. Contracts deployed
// in this run are checked first, then the build artifacts.
func (e *executor) abiFor(ctx context.Context, ref string) json.RawMessage {
	if a, ok := e.abis[ref]; ok {
		return a
	}
	if ref == "" || strings.HasPrefix(ref, "$") || domain.IsHexAddress(ref) || e.artifacts == nil {
		return nil
	}
	artifact, err := e.artifacts.FindArtifact(ctx, ref)
	if err != nil {
		if !errors.Is(err, domain.ErrArtifactNotFound) {
			e.log.Debug("artifact lookup failed", "contract", ref, "error", err)
		}
		e.abis[ref] = nil
		return nil
	}
	e.abis[ref] = artifact.ABI
	return artifact.ABI
}

// keyFor returns the signing key for a sender reference, if one is known
func (e *executor) keyFor(ref string, addr common.Address) string {
	symbols := e.ectx.Symbols
	if r, ok := symbols.Role(ref); ok && r.PrivateKey != "" {
		return r.PrivateKey
	}
	if pool := symbols.Pool(); pool != nil && pool.Source == domain.AccountsFromFallback {
		return pool.Keys()[addr]
	}
	return ""
}

func (e *executor) setBalance(ctx context.Context, p domain.SetBalancePayload) (stepOutput, error) {
	if p.Address == "" || p.Balance == "" {
		return stepOutput{}, fmt.Errorf("%w: set_balance needs address and balance", domain.ErrInsufficientStepData)
	}
	wei, err := domain.ParseAmount(p.Balance)
	if err != nil {
		return stepOutput{}, fmt.Errorf("balance: %w", err)
	}
	address, err := e.ectx.Symbols.ResolveTarget(p.Address)
	if err != nil {
		return stepOutput{}, err
	}

	rctx, cancel := e.rpc(ctx)
	defer cancel()
	if err := e.client.SetBalance(rctx, address.Hex(), wei); err != nil {
		return stepOutput{}, err
	}
	return stepOutput{data: map[string]any{"address": address.Hex(), "balance": wei.String()}}, nil
}

func (e *executor) setStorage(ctx context.Context, p domain.SetStoragePayload) (stepOutput, error) {
	if p.Address == "" || p.Slot == "" || p.Value == "" {
		return stepOutput{}, fmt.Errorf("%w: set_storage needs address, slot and value", domain.ErrInsufficientStepData)
	}

	address, err := e.ectx.Symbols.ResolveTarget(p.Address)
	if err != nil {
		return stepOutput{}, err
	}
	value := p.Value
	if strings.HasPrefix(strings.TrimSpace(value), "$") {
		if value, err = e.ectx.Symbols.ResolveSymbol(value); err != nil {
			return stepOutput{}, err
		}
	}

	rctx, cancel := e.rpc(ctx)
	defer cancel()
	if err := e.client.SetStorageAt(rctx, address.Hex(), p.Slot, value); err != nil {
		return stepOutput{}, err
	}
	return stepOutput{data: map[string]any{"address": address.Hex(), "slot": p.Slot}}, nil
}

func (e *executor) label(p domain.LabelPayload) (stepOutput, error) {
	e.log.Info("label", "text", p.Text)
	e.progress.Info(p.Text)
	return stepOutput{data: map[string]any{"text": p.Text}}, nil
}
