package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"xrpl-wallet/config"
	"xrpl-wallet/internal/core/domain"
	"xrpl-wallet/internal/core/ports"
	"xrpl-wallet/internal/metrics"
	"xrpl-wallet/internal/xrpl/signing"
	"xrpl-wallet/pkg/apperror"
)

const (
	outcomeTTL            = 24 * time.Hour
	lockGrace             = 30 * time.Second
	releaseTimeout        = 5 * time.Second
	defaultFeeDrops       = 10
	defaultConfirmTimeout = 2 * time.Minute
	defaultPollInterval   = time.Second

	// Networks with an id up to this value reject a NetworkID field.
	legacyNetworkIDLimit = 1024
)

// PaymentConfig tunes autofill and the finality wait.
type PaymentConfig struct {
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
	LedgerOffset   uint32
	MaxFeeDrops    uint64
	NetworkID      uint32
}

// PaymentConfigFrom maps ledger settings onto PaymentConfig.
func PaymentConfigFrom(cfg config.LedgerConfig) PaymentConfig {
	return PaymentConfig{
		ConfirmTimeout: cfg.ConfirmTimeout,
		PollInterval:   cfg.PollInterval,
		LedgerOffset:   cfg.LedgerOffset,
		MaxFeeDrops:    cfg.MaxFeeDrops,
		NetworkID:      cfg.NetworkID,
	}
}

// lockTTL covers all work done under the submission lock, which is bounded
// by ConfirmTimeout.
func (c PaymentConfig) lockTTL() time.Duration {
	return c.ConfirmTimeout + lockGrace
}

func (c PaymentConfig) networkID() *uint32 {
	if c.NetworkID <= legacyNetworkIDLimit {
		return nil
	}
	id := c.NetworkID
	return &id
}

// safeToRetry is implemented by transport errors that know whether the
// request could have reached the network.
type safeToRetry interface {
	SafeToRetry() bool
}

// PaymentServiceImpl implements ports.PaymentService.
type PaymentServiceImpl struct {
	ledger  ports.LedgerClient
	lock    ports.SubmissionLock
	cache   ports.OutcomeCache
	cfg     PaymentConfig
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewPaymentService creates a new PaymentServiceImpl. m may be nil.
func NewPaymentService(
	ledger ports.LedgerClient,
	lock ports.SubmissionLock,
	cache ports.OutcomeCache,
	cfg PaymentConfig,
	m *metrics.Metrics,
	log zerolog.Logger,
) *PaymentServiceImpl {
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = defaultConfirmTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	return &PaymentServiceImpl{
		ledger:  ledger,
		lock:    lock,
		cache:   cache,
		cfg:     cfg,
		metrics: m,
		log:     log,
	}
}

// idempotency binds a caller key to the payment it was first used for.
type idempotency struct {
	key         string
	fingerprint string
}

// Submit pays amount XRP from wallet to destination and blocks until the
// payment is final, the context ends, or the confirmation timeout passes.
//
// With an idempotency key, a validated payment is replayed instead of sent
// again. A submission whose outcome was unknown is resolved against the
// ledger before anything new is signed.
func (s *PaymentServiceImpl) Submit(
	ctx context.Context,
	wallet *domain.WalletIdentity,
	destination string,
	amount decimal.Decimal,
	opts ports.PaymentOptions,
) (*domain.PaymentOutcome, error) {
	intent, err := s.validate(wallet, destination, amount, opts)
	if err != nil {
		s.metrics.ObservePayment(string(domain.PaymentInvalid))
		return nil, err
	}

	var idemp *idempotency
	if opts.IdempotencyKey != "" {
		idemp = &idempotency{
			key:         domain.BuildIdempotencyKey(intent.Source, opts.IdempotencyKey),
			fingerprint: intent.Fingerprint(),
		}
		rec, err := s.record(ctx, idemp)
		if err != nil {
			return nil, err
		}
		if rec != nil && rec.Validated {
			return s.replayed(idemp, rec), nil
		}
	}

	release, err := s.acquire(ctx, intent.Source)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ConfirmTimeout)
	defer cancel()

	if idemp != nil {
		// Another request with the same key may have finished while we waited,
		// or an earlier attempt may have left a submission in flight.
		rec, err := s.record(ctx, idemp)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			if rec.Validated {
				return s.replayed(idemp, rec), nil
			}
			outcome, err := s.resolve(ctx, idemp, rec)
			if outcome != nil || err != nil {
				return outcome, err
			}
		}
	}

	outcome, err := s.send(ctx, wallet, intent, idemp)
	s.metrics.ObservePayment(string(domain.ResultOf(outcome, err).Kind))
	if idemp != nil {
		s.settle(ctx, idemp, outcome, err)
	}
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (s *PaymentServiceImpl) validate(
	wallet *domain.WalletIdentity,
	destination string,
	amount decimal.Decimal,
	opts ports.PaymentOptions,
) (*domain.PaymentIntent, error) {
	if wallet == nil || wallet.Keys() == nil {
		return nil, apperror.Validation("wallet is required")
	}
	if err := signing.ValidateAddress(destination); err != nil {
		return nil, apperror.ErrInvalidAddress(err)
	}
	if destination == wallet.Address {
		return nil, apperror.ErrInvalidAddress(errors.New("destination is the source account"))
	}
	drops, err := domain.PaymentDrops(amount)
	if err != nil {
		return nil, apperror.ErrInvalidAmount(err.Error())
	}
	return &domain.PaymentIntent{
		Source:         wallet.Address,
		Destination:    destination,
		Amount:         amount,
		Drops:          drops,
		DestinationTag: opts.DestinationTag,
		SourceTag:      opts.SourceTag,
		IdempotencyKey: opts.IdempotencyKey,
	}, nil
}

// record loads what the idempotency key remembers. A key reused for a
// different payment is a validation error.
func (s *PaymentServiceImpl) record(ctx context.Context, idemp *idempotency) (*domain.PaymentRecord, error) {
	raw, err := s.cache.Get(ctx, idemp.key)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("read idempotency record: %w", err))
	}
	if raw == nil {
		return nil, nil
	}
	var rec domain.PaymentRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("decode idempotency record %s: %w", idemp.key, err))
	}
	if rec.Fingerprint != idemp.fingerprint {
		return nil, apperror.Validation("idempotency key was already used for a different payment")
	}
	return &rec, nil
}

func (s *PaymentServiceImpl) replayed(idemp *idempotency, rec *domain.PaymentRecord) *domain.PaymentOutcome {
	s.log.Info().Str("key", idemp.key).Str("hash", rec.Outcome.Hash).Msg("returning recorded payment outcome")
	outcome := rec.Outcome
	return &outcome
}

// resolve settles a submission recorded under the key whose result was never
// observed. It returns the outcome when that submission paid, an error while
// its result is still unknown, and nil, nil when it can no longer pay.
func (s *PaymentServiceImpl) resolve(ctx context.Context, idemp *idempotency, rec *domain.PaymentRecord) (*domain.PaymentOutcome, error) {
	log := s.log.With().Str("key", idemp.key).Str("hash", rec.Outcome.Hash).Logger()
	log.Warn().Uint32("last_ledger_sequence", rec.LastLedgerSequence).Msg("resolving earlier submission before retrying")

	status, err := s.waitForFinal(ctx, rec.Outcome.Hash, rec.LastLedgerSequence, log)
	if err == nil {
		outcome := rec.Outcome
		outcome.Result = status.Result
		outcome.LedgerIndex = status.LedgerIndex
		s.settle(ctx, idemp, &outcome, nil)
		return &outcome, nil
	}
	if _, unknown := apperror.OutcomeUnknown(err); unknown {
		return nil, err
	}

	log.Info().Err(err).Msg("earlier submission did not pay; sending a new one")
	s.forget(ctx, idemp)
	return nil, nil
}

// settle updates the record after an attempt: validated payments are kept for
// replay, unknown outcomes stay pending, and anything that cannot have paid
// frees the key.
func (s *PaymentServiceImpl) settle(ctx context.Context, idemp *idempotency, outcome *domain.PaymentOutcome, err error) {
	if err == nil {
		rec := &domain.PaymentRecord{Fingerprint: idemp.fingerprint, Validated: true, Outcome: *outcome}
		if sErr := s.store(ctx, idemp.key, rec); sErr != nil {
			s.log.Warn().Err(sErr).Str("key", idemp.key).Msg("failed to record payment outcome")
		}
		return
	}
	if _, unknown := apperror.OutcomeUnknown(err); unknown {
		return
	}
	s.forget(ctx, idemp)
}

func (s *PaymentServiceImpl) store(ctx context.Context, key string, rec *domain.PaymentRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	return s.cache.Set(sctx, key, raw, outcomeTTL)
}

func (s *PaymentServiceImpl) forget(ctx context.Context, idemp *idempotency) {
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	if err := s.cache.Delete(dctx, idemp.key); err != nil {
		s.log.Warn().Err(err).Str("key", idemp.key).Msg("failed to clear idempotency record")
	}
}

// acquire blocks until this process holds the submission lock for source.
func (s *PaymentServiceImpl) acquire(ctx context.Context, source string) (func(), error) {
	key := domain.BuildLockKey(source)
	ttl := s.cfg.lockTTL()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		token, ok, err := s.lock.Acquire(ctx, key, ttl)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("acquire submission lock: %w", err))
		}
		if ok {
			return func() {
				rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
				defer cancel()
				if err := s.lock.Release(rctx, key, token); err != nil {
					s.log.Warn().Err(err).Str("address", source).Msg("failed to release submission lock")
				}
			}, nil
		}

		s.log.Debug().Str("address", source).Msg("waiting for in-flight payment from this address")
		select {
		case <-ctx.Done():
			e := apperror.ErrPaymentInProgress()
			e.Err = ctx.Err()
			return nil, e
		case <-ticker.C:
		}
	}
}

// send autofills, signs, submits, and waits for the validated result. With an
// idempotency key the signed hash is recorded before the blob leaves.
func (s *PaymentServiceImpl) send(ctx context.Context, wallet *domain.WalletIdentity, intent *domain.PaymentIntent, idemp *idempotency) (*domain.PaymentOutcome, error) {
	info, err := s.ledger.AccountInfo(ctx, intent.Source)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, apperror.ErrSubmissionFailed(fmt.Errorf("source account %s is not activated: %w", intent.Source, err))
		}
		return nil, apperror.ErrSubmissionFailed(fmt.Errorf("autofill sequence: %w", err))
	}

	fee, err := s.fee(ctx)
	if err != nil {
		return nil, apperror.ErrSubmissionFailed(fmt.Errorf("autofill fee: %w", err))
	}

	validated, err := s.ledger.ValidatedLedgerIndex(ctx)
	if err != nil {
		return nil, apperror.ErrSubmissionFailed(fmt.Errorf("autofill last ledger: %w", err))
	}
	lastLedger := validated + s.cfg.LedgerOffset

	blob, hash, err := wallet.Keys().SignPayment(&signing.Payment{
		Account:            intent.Source,
		Destination:        intent.Destination,
		Amount:             intent.Drops,
		Fee:                fee,
		Sequence:           info.Sequence,
		LastLedgerSequence: lastLedger,
		DestinationTag:     intent.DestinationTag,
		SourceTag:          intent.SourceTag,
		NetworkID:          s.cfg.networkID(),
	})
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	pending := domain.PaymentOutcome{
		Hash:        hash,
		Source:      intent.Source,
		Destination: intent.Destination,
		Amount:      intent.Amount,
		FeeDrops:    fee,
		Sequence:    info.Sequence,
	}
	if idemp != nil {
		rec := &domain.PaymentRecord{Fingerprint: idemp.fingerprint, LastLedgerSequence: lastLedger, Outcome: pending}
		if err := s.store(ctx, idemp.key, rec); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("record pending payment: %w", err))
		}
	}

	log := s.log.With().
		Str("hash", hash).
		Str("source", intent.Source).
		Str("destination", intent.Destination).
		Uint64("drops", intent.Drops).
		Logger()
	log.Info().
		Uint64("fee_drops", fee).
		Uint32("sequence", info.Sequence).
		Uint32("last_ledger_sequence", lastLedger).
		Msg("submitting payment")

	prelim, err := s.ledger.Submit(ctx, blob)
	if err != nil {
		var classified safeToRetry
		if errors.As(err, &classified) && classified.SafeToRetry() {
			return nil, apperror.ErrSubmissionFailed(err)
		}
		return nil, apperror.ErrSubmissionOutcomeUnknown(hash, err)
	}
	log.Info().
		Str("engine_result", prelim.EngineResult).
		Str("engine_result_message", prelim.EngineResultMessage).
		Msg("preliminary result")

	if prelim.RejectedOutright() {
		return nil, apperror.ErrTransactionRejected(hash, prelim.EngineResult)
	}

	status, err := s.waitForFinal(ctx, hash, lastLedger, log)
	if err != nil {
		return nil, err
	}

	log.Info().Uint32("ledger_index", status.LedgerIndex).Msg("payment validated")
	outcome := pending
	outcome.Result = status.Result
	outcome.LedgerIndex = status.LedgerIndex
	return &outcome, nil
}

// fee picks the open ledger cost, capped at MaxFeeDrops.
func (s *PaymentServiceImpl) fee(ctx context.Context) (uint64, error) {
	info, err := s.ledger.Fee(ctx)
	if err != nil {
		return 0, err
	}
	fee := max(info.OpenLedgerFee, info.BaseFee, info.MinimumFee)
	if fee == 0 {
		fee = defaultFeeDrops
	}
	if s.cfg.MaxFeeDrops > 0 && fee > s.cfg.MaxFeeDrops {
		s.log.Warn().Uint64("fee_drops", fee).Uint64("max_fee_drops", s.cfg.MaxFeeDrops).Msg("capping transaction fee")
		fee = s.cfg.MaxFeeDrops
	}
	return fee, nil
}

// waitForFinal polls tx until the transaction is validated or can no longer
// be. The caller bounds it through ctx.
func (s *PaymentServiceImpl) waitForFinal(ctx context.Context, hash string, lastLedger uint32, log zerolog.Logger) (*domain.TxStatus, error) {
	start := time.Now()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	final := func(st *domain.TxStatus) (*domain.TxStatus, error) {
		s.metrics.ObserveConfirmation(time.Since(start))
		if st.Result != domain.ResultSuccess {
			return nil, apperror.ErrTransactionRejected(hash, st.Result)
		}
		return st, nil
	}

	for {
		select {
		case <-ctx.Done():
			log.Warn().Err(ctx.Err()).Msg("stopped waiting for validation; outcome unknown")
			return nil, apperror.ErrSubmissionOutcomeUnknown(hash, ctx.Err())
		case <-ticker.C:
		}

		st, err := s.ledger.Tx(ctx, hash)
		switch {
		case err == nil && st.Validated:
			return final(st)
		case err != nil && !errors.Is(err, domain.ErrTxnNotFound):
			log.Warn().Err(err).Msg("tx lookup failed, will retry")
			continue
		}

		validated, err := s.ledger.ValidatedLedgerIndex(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("ledger lookup failed, will retry")
			continue
		}
		if validated <= lastLedger {
			continue
		}

		// The window closed; the transaction may still have landed in lastLedger.
		st, err = s.ledger.Tx(ctx, hash)
		if err == nil && st.Validated {
			return final(st)
		}
		s.metrics.ObserveConfirmation(time.Since(start))
		return nil, apperror.ErrTransactionExpired(hash, lastLedger)
	}
}
