// Package engine turns a transaction request into balanced ledger postings.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/ledgerengine/internal/accounts"
	"github.com/cleared-dev/ledgerengine/internal/journal"
	"github.com/cleared-dev/ledgerengine/internal/logging"
	"github.com/cleared-dev/ledgerengine/internal/metrics"
	"github.com/cleared-dev/ledgerengine/internal/model"
	"github.com/cleared-dev/ledgerengine/internal/rules"
)

// Ledger stores committed entries.
type Ledger interface {
	// Append stores the postings as one entry and returns its ID.
	Append(ctx context.Context, postings []model.Posting) (string, error)
}

// AccountRef identifies an account in a result.
type AccountRef struct {
	Code string
	Name string
}

// CostOfGoodsPair describes the secondary cost-of-goods postings of a goods sale.
type CostOfGoodsPair struct {
	Debit  AccountRef
	Credit AccountRef
	Amount decimal.Decimal
}

// Result is the outcome of processing one request.
type Result struct {
	Type          model.TransactionType
	Postings      []model.Posting
	Debit         AccountRef
	Credit        AccountRef
	IsCashRelated bool
	CostOfGoods   *CostOfGoodsPair
}

// CommitEvent is emitted to subscribers after a result is committed.
type CommitEvent struct {
	EntryID  string
	Type     model.TransactionType
	Postings []model.Posting
}

// Deps are the collaborators of an Engine. Ledger is only needed for Commit.
type Deps struct {
	Directory accounts.Directory
	Ledger    Ledger
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
}

// Engine resolves requests to postings. It is safe for concurrent use.
type Engine struct {
	dir         accounts.Directory
	provisioner *accounts.Provisioner
	ledger      Ledger
	logger      *zap.Logger
	metrics     *metrics.Metrics

	mu          sync.RWMutex
	subscribers []chan<- CommitEvent
}

// New creates an Engine.
func New(deps Deps) *Engine {
	logger := logging.OrNop(deps.Logger)
	return &Engine{
		dir:         deps.Directory,
		provisioner: accounts.NewProvisioner(deps.Directory, logger, deps.Metrics),
		ledger:      deps.Ledger,
		logger:      logger,
		metrics:     deps.Metrics,
	}
}

// Process validates req, resolves its accounts (provisioning placeholders for
// missing ones) and builds the postings. Nothing but placeholder accounts is
// written; committing the result is a separate step.
func (e *Engine) Process(ctx context.Context, req model.TransactionRequest) (*Result, error) {
	r, err := normalize(req)
	if err != nil {
		var ute *model.UnrecognizedTypeError
		if errors.As(err, &ute) {
			e.metrics.RequestRejected("type")
		} else {
			e.metrics.RequestRejected("validation")
		}
		return nil, err
	}

	rule, err := rules.Resolve(r.Type, r.Mode, r.Category)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("resolved rule",
		zap.String("type", string(r.Type)),
		zap.String("mode", string(r.Mode)),
		zap.Stringer("debit", rule.Debit),
		zap.Stringer("credit", rule.Credit),
	)

	var debit, credit model.Account
	if rule.Explicit {
		debit, credit, err = e.explicitAccounts(ctx, r)
	} else {
		debit, credit, err = e.resolvePair(ctx, rule.Debit, rule.Credit)
	}
	if err != nil {
		return nil, err
	}

	lines := journal.Lines{
		Debit:       debit,
		Credit:      credit,
		Amount:      r.Amount,
		Description: r.Description,
		Date:        r.Date,
		Type:        r.Type,
	}

	res := &Result{
		Type:          r.Type,
		Debit:         AccountRef{Code: debit.Code, Name: debit.Name},
		Credit:        AccountRef{Code: credit.Code, Name: credit.Name},
		IsCashRelated: rule.IsCashRelated,
	}

	if rule.NeedsCostOfGoods {
		cogsFilter, inventoryFilter := rules.CostOfGoods()
		cogs, inventory, err := e.resolvePair(ctx, cogsFilter, inventoryFilter)
		if err != nil {
			return nil, err
		}
		lines.Cost = &journal.CostPair{Debit: cogs, Credit: inventory, Amount: r.CostBasis}
		res.CostOfGoods = &CostOfGoodsPair{
			Debit:  AccountRef{Code: cogs.Code, Name: cogs.Name},
			Credit: AccountRef{Code: inventory.Code, Name: inventory.Name},
			Amount: r.CostBasis,
		}
	}

	res.Postings = journal.BuildLines(lines)
	if err := journal.CheckBalanced(res.Postings); err != nil {
		panic(fmt.Sprintf("engine: built postings for %s are not balanced: %v", r.Type, err))
	}

	e.metrics.PostingsProduced(string(r.Type), len(res.Postings))
	return res, nil
}

// Commit appends a processed result to the ledger and notifies subscribers.
func (e *Engine) Commit(ctx context.Context, res *Result) (string, error) {
	if e.ledger == nil {
		return "", errors.New("commit: engine has no ledger")
	}
	entryID, err := e.ledger.Append(ctx, res.Postings)
	if err != nil {
		return "", fmt.Errorf("committing %s entry: %w", res.Type, err)
	}
	for i := range res.Postings {
		res.Postings[i].EntryID = entryID
	}

	e.logger.Info("committed entry",
		zap.String("entry_id", entryID),
		zap.String("type", string(res.Type)),
		zap.Int("lines", len(res.Postings)),
	)
	e.publish(CommitEvent{EntryID: entryID, Type: res.Type, Postings: res.Postings})
	return entryID, nil
}

// Post processes and commits req in one call.
func (e *Engine) Post(ctx context.Context, req model.TransactionRequest) (*Result, string, error) {
	res, err := e.Process(ctx, req)
	if err != nil {
		return nil, "", err
	}
	entryID, err := e.Commit(ctx, res)
	if err != nil {
		return res, "", err
	}
	return res, entryID, nil
}

// Notify registers ch to receive commit events. Sends never block: a
// subscriber that is not ready misses the event.
func (e *Engine) Notify(ch chan<- CommitEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subscribers = append(e.subscribers, ch)
}

func (e *Engine) publish(ev CommitEvent) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, ch := range e.subscribers {
		select {
		case ch <- ev:
		default:
			e.logger.Warn("dropped commit event for slow subscriber", zap.String("entry_id", ev.EntryID))
		}
	}
}

// resolvePair looks up both sides before provisioning either, so a lookup
// failure leaves no placeholder behind.
func (e *Engine) resolvePair(ctx context.Context, debitFilter, creditFilter model.Filter) (model.Account, model.Account, error) {
	debit, debitFound, err := accounts.Lookup(ctx, e.dir, debitFilter)
	if err != nil {
		return model.Account{}, model.Account{}, fmt.Errorf("looking up debit account: %w", err)
	}
	credit, creditFound, err := accounts.Lookup(ctx, e.dir, creditFilter)
	if err != nil {
		return model.Account{}, model.Account{}, fmt.Errorf("looking up credit account: %w", err)
	}

	if !debitFound {
		if debit, err = e.provisioner.Provision(ctx, debitFilter); err != nil {
			return model.Account{}, model.Account{}, fmt.Errorf("provisioning debit account: %w", err)
		}
	}
	if !creditFound {
		if credit, err = e.provisioner.Provision(ctx, creditFilter); err != nil {
			return model.Account{}, model.Account{}, fmt.Errorf("provisioning credit account: %w", err)
		}
	}
	return debit, credit, nil
}

// explicitAccounts uses the transfer's own codes. Names are read from the
// directory when the code exists; nothing is provisioned.
func (e *Engine) explicitAccounts(ctx context.Context, r request) (model.Account, model.Account, error) {
	named := func(code string) (model.Account, error) {
		acct, ok, err := e.dir.Get(ctx, code)
		if err != nil {
			return model.Account{}, fmt.Errorf("reading account %s: %w", code, err)
		}
		if !ok {
			return model.Account{Code: code, Name: code}, nil
		}
		return acct, nil
	}
	debit, err := named(r.Dest)
	if err != nil {
		return model.Account{}, model.Account{}, err
	}
	credit, err := named(r.Source)
	if err != nil {
		return model.Account{}, model.Account{}, err
	}
	return debit, credit, nil
}
