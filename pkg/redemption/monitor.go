// Package redemption observes redemption requests of tBTC deposits, waits for
// the keep's signature of each request and broadcasts the signed bitcoin
// transaction paying the redeemer.
package redemption

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ipfs/go-log"

	"github.com/keep-network/tbtc-redemption/pkg/btc"
	"github.com/keep-network/tbtc-redemption/pkg/chain"
	"github.com/keep-network/tbtc-redemption/pkg/chain/bitcoin"
	"github.com/keep-network/tbtc-redemption/pkg/ecdsa"
)

var logger = log.Logger("keep-redemption")

const (
	// DefaultSignatureTimeout matches the on-chain redemption signature
	// timeout of a deposit.
	DefaultSignatureTimeout = 3 * time.Hour

	// DefaultMinOutputValue is the dust limit of a witness output.
	DefaultMinOutputValue = 546

	signatureBufferSize = 16
)

// Config holds the parameters of the redemption monitor.
type Config struct {
	// RequesterAddress limits the monitor to requests of a single redeemer.
	// Empty address matches all requests.
	RequesterAddress string
	// SignatureTimeout bounds the wait for the keep's signature.
	SignatureTimeout time.Duration
	// MinOutputValue is the lowest value paid to the redeemer accepted.
	MinOutputValue uint64
	// LookbackBlocks is the number of past blocks searched for redemption
	// requests on start. Zero disables the lookup.
	LookbackBlocks uint64
}

// Monitor reacts to redemption requests. Every request is processed in its
// own goroutine and failures of a single request never affect others.
type Monitor struct {
	handle      chain.TBTCHandle
	broadcaster bitcoin.Handle
	storage     Storage
	config      Config

	monitoringLock *monitoringLock
}

// Initialize creates the redemption monitor and starts it.
func Initialize(
	ctx context.Context,
	handle chain.TBTCHandle,
	broadcaster bitcoin.Handle,
	storage Storage,
	config *Config,
) (*Monitor, error) {
	logger.Infof("initializing redemption monitor")

	monitor := NewMonitor(handle, broadcaster, storage, config)

	if err := monitor.Start(ctx); err != nil {
		return nil, fmt.Errorf(
			"could not start redemption monitoring: [%v]",
			err,
		)
	}

	logger.Infof("redemption monitor has been initialized")

	return monitor, nil
}

// NewMonitor creates a redemption monitor. Zero values of the config are
// replaced with defaults.
func NewMonitor(
	handle chain.TBTCHandle,
	broadcaster bitcoin.Handle,
	storage Storage,
	config *Config,
) *Monitor {
	monitorConfig := *config
	if monitorConfig.SignatureTimeout == 0 {
		monitorConfig.SignatureTimeout = DefaultSignatureTimeout
	}
	if monitorConfig.MinOutputValue == 0 {
		monitorConfig.MinOutputValue = DefaultMinOutputValue
	}

	return &Monitor{
		handle:         handle,
		broadcaster:    broadcaster,
		storage:        storage,
		config:         monitorConfig,
		monitoringLock: newMonitoringLock(),
	}
}

// InProgressCount returns the number of requests currently processed.
func (m *Monitor) InProgressCount() int {
	return m.monitoringLock.count()
}

// RecordsCount returns the number of stored records in the given state.
func (m *Monitor) RecordsCount(state State) (int, error) {
	records, err := m.storage.Records()
	if err != nil {
		return 0, err
	}

	count := 0
	for _, record := range records {
		if record.State == state {
			count++
		}
	}

	return count, nil
}

// Start subscribes to redemption requested events and, when configured,
// processes requests from the recent past. Monitoring is disabled when the
// context is done.
func (m *Monitor) Start(ctx context.Context) error {
	requestedSubscription, err := m.handle.OnDepositRedemptionRequested(
		m.config.RequesterAddress,
		func(event *chain.DepositRedemptionRequestedEvent) {
			go m.handleRequestEvent(ctx, event)
		},
	)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		requestedSubscription.Unsubscribe()
		logger.Infof("redemption monitoring disabled")
	}()

	if m.config.LookbackBlocks > 0 {
		go m.processPastRequests(ctx)
	}

	logger.Infof(
		"redemption monitoring initialized for requester [%s]",
		m.config.RequesterAddress,
	)

	return nil
}

func (m *Monitor) processPastRequests(ctx context.Context) {
	currentBlock, err := m.handle.BlockCounter()
	if err != nil {
		logger.Errorf("could not get current block: [%v]", err)
		return
	}

	startBlock := uint64(0)
	if currentBlock > m.config.LookbackBlocks {
		startBlock = currentBlock - m.config.LookbackBlocks
	}

	events, err := m.handle.PastDepositRedemptionRequestedEvents(
		m.config.RequesterAddress,
		startBlock,
	)
	if err != nil {
		logger.Errorf(
			"could not get past redemption requests since block [%d]: [%v]",
			startBlock,
			err,
		)
		return
	}

	logger.Infof(
		"found [%d] redemption requests since block [%d]",
		len(events),
		startBlock,
	)

	for _, event := range events {
		go m.handleRequestEvent(ctx, event)
	}
}

func (m *Monitor) handleRequestEvent(
	ctx context.Context,
	event *chain.DepositRedemptionRequestedEvent,
) {
	record, err := m.Process(ctx, event)
	if err != nil {
		// already logged and persisted
		return
	}
	if record != nil && record.State == Done {
		logger.Infof(
			"redemption of deposit [%s] completed in transaction [%s]",
			record.DepositAddress,
			record.TransactionID,
		)
	}
}

// Process runs the redemption workflow of a single request until it is done
// or abandoned. It returns the final audit record. A nil record with no
// error means the request was skipped: it is already processed or the
// deposit is not being redeemed.
func (m *Monitor) Process(
	ctx context.Context,
	event *chain.DepositRedemptionRequestedEvent,
) (*Record, error) {
	record := &Record{
		DepositAddress:   event.DepositAddress,
		RequesterAddress: event.RequesterAddress,
		Digest:           fmt.Sprintf("%x", event.Digest),
		BlockNumber:      event.BlockNumber,
	}

	id := requestID(event.DepositAddress, event.Digest)

	if !m.monitoringLock.tryLock(id) {
		logger.Warningf(
			"redemption of deposit [%s] for digest [%s] is already monitored",
			record.DepositAddress,
			record.Digest,
		)
		return nil, nil
	}
	defer m.monitoringLock.release(id)

	stored, ok, err := m.storage.Load(event.DepositAddress, event.Digest)
	if err != nil {
		logger.Warningf(
			"could not load record of deposit [%s] for digest [%s]: [%v]",
			record.DepositAddress,
			record.Digest,
			err,
		)
	} else if ok && stored.State == Done {
		logger.Infof(
			"redemption of deposit [%s] for digest [%s] already "+
				"completed in transaction [%s]",
			record.DepositAddress,
			record.Digest,
			stored.TransactionID,
		)
		return nil, nil
	}

	request, err := NewRequest(event, m.config.MinOutputValue)
	if err != nil {
		return m.abandon(record, err)
	}

	if !m.shouldProcess(request.DepositAddress) {
		return nil, nil
	}

	m.transition(record, Observed)

	publicKey, err := m.resolvePublicKey(request.DepositAddress)
	if err != nil {
		return m.abandon(record, err)
	}
	m.transition(record, KeyResolved)

	unsignedTransaction, err := buildTransaction(request, publicKey)
	if err != nil {
		return m.abandon(record, err)
	}

	keepAddress, err := m.handle.KeepAddress(request.DepositAddress)
	if err != nil {
		return m.abandon(
			record,
			fmt.Errorf("could not get keep address: [%v]: [%w]", err, ErrChainFailure),
		)
	}
	record.KeepAddress = keepAddress
	m.transition(record, AwaitingSignature)

	derSignature, err := m.awaitSignature(ctx, request, keepAddress, publicKey)
	if err != nil {
		return m.abandon(record, err)
	}
	m.transition(record, SignatureVerified)

	signedTransaction, err := btc.AttachWitness(
		unsignedTransaction,
		0,
		derSignature,
		publicKey,
	)
	if err != nil {
		return m.abandon(
			record,
			fmt.Errorf("could not attach witness: [%v]: [%w]", err, ErrEncoding),
		)
	}
	m.transition(record, Broadcast)

	transactionID, err := btc.Publish(ctx, m.broadcaster, signedTransaction)
	if err != nil {
		return m.abandon(record, fmt.Errorf("%v: [%w]", err, ErrBroadcastFailure))
	}

	record.TransactionID = transactionID
	m.transition(record, Done)

	return record, nil
}

// shouldProcess checks whether the deposit is still being redeemed. A
// request of an already redeemed or liquidated deposit is skipped. When the
// state cannot be determined the request is processed.
func (m *Monitor) shouldProcess(depositAddress string) bool {
	state, err := m.handle.CurrentState(depositAddress)
	if err != nil {
		logger.Warningf(
			"could not get state of deposit [%s]: [%v]",
			depositAddress,
			err,
		)
		return true
	}

	if !state.IsRedemptionInProgress() {
		logger.Infof(
			"deposit [%s] is in state [%v]; skipping redemption request",
			depositAddress,
			state,
		)
		return false
	}

	return true
}

// resolvePublicKey returns the public key of the last registration event of
// the deposit.
func (m *Monitor) resolvePublicKey(depositAddress string) (*btcec.PublicKey, error) {
	events, err := m.handle.PastDepositRegisteredPubkeyEvents(depositAddress)
	if err != nil {
		return nil, fmt.Errorf(
			"could not get registered public key: [%v]: [%w]",
			err,
			ErrMissingKey,
		)
	}

	if len(events) == 0 {
		return nil, fmt.Errorf(
			"no public key registered for deposit [%s]: [%w]",
			depositAddress,
			ErrMissingKey,
		)
	}

	last := events[len(events)-1]

	publicKey, err := ecdsa.NewPublicKey(
		last.SigningGroupPubkeyX[:],
		last.SigningGroupPubkeyY[:],
	)
	if err != nil {
		return nil, fmt.Errorf(
			"invalid public key registered in block [%d]: [%v]: [%w]",
			last.BlockNumber,
			err,
			ErrMissingKey,
		)
	}

	return publicKey, nil
}

// buildTransaction builds the unsigned redemption transaction and checks the
// request digest commits to it.
func buildTransaction(
	request *Request,
	publicKey *btcec.PublicKey,
) ([]byte, error) {
	unsignedTransaction, err := btc.BuildUnsignedTransaction(
		request.Outpoint,
		btc.RedemptionInputSequence,
		request.OutputValue(),
		request.RedeemerOutputScript,
	)
	if err != nil {
		return nil, fmt.Errorf(
			"could not build transaction: [%v]: [%w]",
			err,
			ErrEncoding,
		)
	}

	sighash, err := btc.CalculateSighash(
		unsignedTransaction,
		publicKey,
		request.UtxoValue,
	)
	if err != nil {
		return nil, fmt.Errorf(
			"could not calculate sighash: [%v]: [%w]",
			err,
			ErrEncoding,
		)
	}

	if sighash != request.Digest {
		return nil, fmt.Errorf(
			"transaction sighash [%x] does not match requested digest [%x]: [%w]",
			sighash,
			request.Digest,
			ErrProtocolMismatch,
		)
	}

	return unsignedTransaction, nil
}

// awaitSignature waits for the first valid signature of the request digest
// submitted by the keep. The subscription is installed before past events are
// fetched so no signature submitted in between is missed.
func (m *Monitor) awaitSignature(
	ctx context.Context,
	request *Request,
	keepAddress string,
	publicKey *btcec.PublicKey,
) ([]byte, error) {
	waitCtx, cancelWait := context.WithCancel(ctx)
	defer cancelWait()

	signatureChan := make(chan *chain.SignatureSubmittedEvent, signatureBufferSize)

	signatureSubscription, err := m.handle.OnSignatureSubmitted(
		keepAddress,
		request.Digest,
		func(event *chain.SignatureSubmittedEvent) {
			select {
			case signatureChan <- event:
			case <-waitCtx.Done():
			}
		},
	)
	if err != nil {
		return nil, fmt.Errorf(
			"could not subscribe to signatures of keep [%s]: [%v]: [%w]",
			keepAddress,
			err,
			ErrChainFailure,
		)
	}
	defer signatureSubscription.Unsubscribe()

	keepClosedChan, keepClosedUnsubscribe, err := m.watchKeepClosed(keepAddress)
	if err != nil {
		return nil, fmt.Errorf(
			"could not subscribe to closing of keep [%s]: [%v]: [%w]",
			keepAddress,
			err,
			ErrChainFailure,
		)
	}
	defer keepClosedUnsubscribe()

	pastEvents, err := m.handle.PastSignatureSubmittedEvents(
		keepAddress,
		request.Digest,
		request.BlockNumber,
	)
	if err != nil {
		return nil, fmt.Errorf(
			"could not get past signatures of keep [%s]: [%v]: [%w]",
			keepAddress,
			err,
			ErrChainFailure,
		)
	}
	for _, event := range pastEvents {
		if derSignature, ok := acceptSignature(request, publicKey, event); ok {
			return derSignature, nil
		}
	}

	logger.Infof(
		"waiting for signature of digest [%x] from keep [%s]",
		request.Digest,
		keepAddress,
	)

	timeoutChan := time.After(m.config.SignatureTimeout)

	for {
		select {
		case event := <-signatureChan:
			if derSignature, ok := acceptSignature(request, publicKey, event); ok {
				return derSignature, nil
			}
		case <-keepClosedChan:
			return nil, fmt.Errorf(
				"keep [%s] closed before signing: [%w]",
				keepAddress,
				ErrKeepClosed,
			)
		case <-timeoutChan:
			return nil, fmt.Errorf(
				"no signature after [%v]: [%w]",
				m.config.SignatureTimeout,
				ErrSignatureTimeout,
			)
		case <-ctx.Done():
			return nil, fmt.Errorf(
				"stopped waiting for signature: [%w]",
				ctx.Err(),
			)
		}
	}
}

// acceptSignature returns the DER encoded low-S signature when the event
// carries a valid signature of the request digest.
func acceptSignature(
	request *Request,
	publicKey *btcec.PublicKey,
	event *chain.SignatureSubmittedEvent,
) ([]byte, bool) {
	signature := ecdsa.NewSignature(
		event.R[:],
		event.S[:],
		int(event.RecoveryID),
	)

	derSignature, err := ecdsa.Assemble(
		request.Digest,
		event.Digest,
		signature,
		publicKey,
	)
	if err != nil {
		if errors.Is(err, ecdsa.ErrProtocolMismatch) {
			logger.Errorf(
				"received signature of digest [%x] from block [%d] "+
					"on subscription of digest [%x]: [%v]",
				event.Digest,
				event.BlockNumber,
				request.Digest,
				err,
			)
		} else {
			logger.Warningf(
				"discarding signature of digest [%x] from block [%d]: [%v]",
				event.Digest,
				event.BlockNumber,
				fmt.Errorf("%v: [%w]", err, ErrVerificationFailure),
			)
		}
		return nil, false
	}

	logger.Infof(
		"accepted signature of digest [%x] from block [%d]",
		event.Digest,
		event.BlockNumber,
	)

	return derSignature, true
}

func (m *Monitor) watchKeepClosed(
	keepAddress string,
) (chan struct{}, func(), error) {
	signalChan := make(chan struct{}, 1)

	signal := func() {
		select {
		case signalChan <- struct{}{}:
		default:
		}
	}

	keepClosedSubscription, err := m.handle.OnKeepClosed(
		keepAddress,
		func(_ *chain.KeepClosedEvent) {
			signal()
		},
	)
	if err != nil {
		return nil, nil, err
	}

	keepTerminatedSubscription, err := m.handle.OnKeepTerminated(
		keepAddress,
		func(_ *chain.KeepTerminatedEvent) {
			signal()
		},
	)
	if err != nil {
		keepClosedSubscription.Unsubscribe()
		return nil, nil, err
	}

	unsubscribe := func() {
		keepClosedSubscription.Unsubscribe()
		keepTerminatedSubscription.Unsubscribe()
	}

	return signalChan, unsubscribe, nil
}

func (m *Monitor) transition(record *Record, state State) {
	record.State = state
	m.persist(record)

	logger.Debugf(
		"redemption of deposit [%s] for digest [%s] in state [%v]",
		record.DepositAddress,
		record.Digest,
		state,
	)
}

func (m *Monitor) abandon(record *Record, err error) (*Record, error) {
	record.Reason = err.Error()
	m.transition(record, Abandoned)

	logger.Errorf(
		"abandoned redemption of deposit [%s] for digest [%s]: [%v]",
		record.DepositAddress,
		record.Digest,
		err,
	)

	return record, err
}

func (m *Monitor) persist(record *Record) {
	record.UpdatedAt = time.Now()

	if err := m.storage.Save(record); err != nil {
		logger.Errorf(
			"could not persist record of deposit [%s] for digest [%s]: [%v]",
			record.DepositAddress,
			record.Digest,
			err,
		)
	}
}
