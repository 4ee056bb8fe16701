// Package local contains local stub implementation of the chain interface.
// This implementation is for development and testing purposes only.
package local

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/keep-network/keep-common/pkg/subscription"
	"github.com/keep-network/tbtc-redemption/pkg/chain"
)

type localDeposit struct {
	keepAddress  string
	state        chain.DepositState
	pubkeyEvents []*chain.DepositRegisteredPubkeyEvent
}

type localKeep struct {
	signatureSubmittedEvents []*chain.SignatureSubmittedEvent

	signatureSubmittedHandlers map[int]*signatureSubmittedHandler
	keepClosedHandlers         map[int]func(event *chain.KeepClosedEvent)
	keepTerminatedHandlers     map[int]func(event *chain.KeepTerminatedEvent)
}

type redemptionRequestedHandler struct {
	requesterAddress string
	handler          func(event *chain.DepositRedemptionRequestedEvent)
}

type signatureSubmittedHandler struct {
	digest  [32]byte
	handler func(event *chain.SignatureSubmittedEvent)
}

type localChainLogger struct {
	pastSignatureSubmittedEventsCalls int
	keepAddressCalls                  int
}

// TBTCLocalChain is an in-memory host chain with tBTC contracts.
type TBTCLocalChain struct {
	mutex sync.Mutex

	logger *localChainLogger

	blockNumber uint64

	deposits map[string]*localDeposit
	keeps    map[string]*localKeep

	redemptionRequestedEvents   []*chain.DepositRedemptionRequestedEvent
	redemptionRequestedHandlers map[int]*redemptionRequestedHandler
}

// NewTBTCLocalChain creates an empty local chain.
func NewTBTCLocalChain() *TBTCLocalChain {
	return &TBTCLocalChain{
		logger:                      &localChainLogger{},
		deposits:                    make(map[string]*localDeposit),
		keeps:                       make(map[string]*localKeep),
		redemptionRequestedHandlers: make(map[int]*redemptionRequestedHandler),
	}
}

// CreateDeposit registers a deposit backed by the given keep.
func (tlc *TBTCLocalChain) CreateDeposit(depositAddress, keepAddress string) {
	tlc.mutex.Lock()
	defer tlc.mutex.Unlock()

	tlc.deposits[normalize(depositAddress)] = &localDeposit{
		keepAddress: normalize(keepAddress),
		state:       chain.AwaitingSignerSetup,
	}

	if _, ok := tlc.keeps[normalize(keepAddress)]; !ok {
		tlc.keeps[normalize(keepAddress)] = &localKeep{
			signatureSubmittedHandlers: make(map[int]*signatureSubmittedHandler),
			keepClosedHandlers:         make(map[int]func(event *chain.KeepClosedEvent)),
			keepTerminatedHandlers:     make(map[int]func(event *chain.KeepTerminatedEvent)),
		}
	}
}

// RegisterPubkey emits a public key registration event for the deposit.
func (tlc *TBTCLocalChain) RegisterPubkey(
	depositAddress string,
	x, y [32]byte,
) error {
	tlc.mutex.Lock()
	defer tlc.mutex.Unlock()

	deposit, ok := tlc.deposits[normalize(depositAddress)]
	if !ok {
		return fmt.Errorf("no deposit with address [%v]", depositAddress)
	}

	tlc.blockNumber++

	deposit.pubkeyEvents = append(
		deposit.pubkeyEvents,
		&chain.DepositRegisteredPubkeyEvent{
			DepositAddress:      normalize(depositAddress),
			SigningGroupPubkeyX: x,
			SigningGroupPubkeyY: y,
			BlockNumber:         tlc.blockNumber,
		},
	)
	deposit.state = chain.AwaitingBtcFundingProof

	return nil
}

// SetDepositState changes the state of the deposit.
func (tlc *TBTCLocalChain) SetDepositState(
	depositAddress string,
	state chain.DepositState,
) error {
	tlc.mutex.Lock()
	defer tlc.mutex.Unlock()

	deposit, ok := tlc.deposits[normalize(depositAddress)]
	if !ok {
		return fmt.Errorf("no deposit with address [%v]", depositAddress)
	}

	deposit.state = state

	return nil
}

// RequestRedemption emits the redemption requested event in a new block.
// The event's block number is set by the chain.
func (tlc *TBTCLocalChain) RequestRedemption(
	event *chain.DepositRedemptionRequestedEvent,
) error {
	tlc.mutex.Lock()
	defer tlc.mutex.Unlock()

	deposit, ok := tlc.deposits[normalize(event.DepositAddress)]
	if ok {
		deposit.state = chain.AwaitingWithdrawalSignature
	}

	tlc.blockNumber++

	emitted := *event
	emitted.DepositAddress = normalize(event.DepositAddress)
	emitted.RequesterAddress = normalize(event.RequesterAddress)
	emitted.BlockNumber = tlc.blockNumber

	tlc.redemptionRequestedEvents = append(
		tlc.redemptionRequestedEvents,
		&emitted,
	)

	for _, handler := range tlc.redemptionRequestedHandlers {
		if !matchesRequester(handler.requesterAddress, emitted.RequesterAddress) {
			continue
		}

		go func(
			handler func(event *chain.DepositRedemptionRequestedEvent),
			event chain.DepositRedemptionRequestedEvent,
		) {
			handler(&event)
		}(handler.handler, emitted)
	}

	return nil
}

// SubmitSignature emits the signature submitted event of the keep in a new
// block.
func (tlc *TBTCLocalChain) SubmitSignature(
	keepAddress string,
	event *chain.SignatureSubmittedEvent,
) error {
	tlc.mutex.Lock()
	defer tlc.mutex.Unlock()

	keep, ok := tlc.keeps[normalize(keepAddress)]
	if !ok {
		return fmt.Errorf("no keep with address [%v]", keepAddress)
	}

	tlc.blockNumber++

	emitted := *event
	emitted.BlockNumber = tlc.blockNumber

	keep.signatureSubmittedEvents = append(keep.signatureSubmittedEvents, &emitted)

	for _, handler := range keep.signatureSubmittedHandlers {
		if handler.digest != emitted.Digest {
			continue
		}

		go func(
			handler func(event *chain.SignatureSubmittedEvent),
			event chain.SignatureSubmittedEvent,
		) {
			handler(&event)
		}(handler.handler, emitted)
	}

	return nil
}

// CloseKeep emits the keep closed event.
func (tlc *TBTCLocalChain) CloseKeep(keepAddress string) error {
	tlc.mutex.Lock()
	defer tlc.mutex.Unlock()

	keep, ok := tlc.keeps[normalize(keepAddress)]
	if !ok {
		return fmt.Errorf("no keep with address [%v]", keepAddress)
	}

	tlc.blockNumber++

	for _, handler := range keep.keepClosedHandlers {
		go func(handler func(event *chain.KeepClosedEvent), blockNumber uint64) {
			handler(&chain.KeepClosedEvent{BlockNumber: blockNumber})
		}(handler, tlc.blockNumber)
	}

	return nil
}

// TerminateKeep emits the keep terminated event.
func (tlc *TBTCLocalChain) TerminateKeep(keepAddress string) error {
	tlc.mutex.Lock()
	defer tlc.mutex.Unlock()

	keep, ok := tlc.keeps[normalize(keepAddress)]
	if !ok {
		return fmt.Errorf("no keep with address [%v]", keepAddress)
	}

	tlc.blockNumber++

	for _, handler := range keep.keepTerminatedHandlers {
		go func(handler func(event *chain.KeepTerminatedEvent), blockNumber uint64) {
			handler(&chain.KeepTerminatedEvent{BlockNumber: blockNumber})
		}(handler, tlc.blockNumber)
	}

	return nil
}

// PastSignatureSubmittedEventsCalls returns the number of past signature
// queries made so far.
func (tlc *TBTCLocalChain) PastSignatureSubmittedEventsCalls() int {
	tlc.mutex.Lock()
	defer tlc.mutex.Unlock()

	return tlc.logger.pastSignatureSubmittedEventsCalls
}

// KeepAddressCalls returns the number of keep address queries made so far.
func (tlc *TBTCLocalChain) KeepAddressCalls() int {
	tlc.mutex.Lock()
	defer tlc.mutex.Unlock()

	return tlc.logger.keepAddressCalls
}

// SignatureSubmittedHandlersCount returns the number of signature
// subscriptions currently installed for the keep.
func (tlc *TBTCLocalChain) SignatureSubmittedHandlersCount(keepAddress string) int {
	tlc.mutex.Lock()
	defer tlc.mutex.Unlock()

	keep, ok := tlc.keeps[normalize(keepAddress)]
	if !ok {
		return 0
	}

	return len(keep.signatureSubmittedHandlers)
}

func (tlc *TBTCLocalChain) BlockCounter() (uint64, error) {
	tlc.mutex.Lock()
	defer tlc.mutex.Unlock()

	return tlc.blockNumber, nil
}

func (tlc *TBTCLocalChain) KeepAddress(depositAddress string) (string, error) {
	tlc.mutex.Lock()
	defer tlc.mutex.Unlock()

	tlc.logger.keepAddressCalls++

	deposit, ok := tlc.deposits[normalize(depositAddress)]
	if !ok {
		return "", fmt.Errorf("no deposit with address [%v]", depositAddress)
	}

	return deposit.keepAddress, nil
}

func (tlc *TBTCLocalChain) CurrentState(
	depositAddress string,
) (chain.DepositState, error) {
	tlc.mutex.Lock()
	defer tlc.mutex.Unlock()

	deposit, ok := tlc.deposits[normalize(depositAddress)]
	if !ok {
		return 0, fmt.Errorf("no deposit with address [%v]", depositAddress)
	}

	return deposit.state, nil
}

func (tlc *TBTCLocalChain) OnDepositRedemptionRequested(
	requesterAddress string,
	handler func(event *chain.DepositRedemptionRequestedEvent),
) (subscription.EventSubscription, error) {
	tlc.mutex.Lock()
	defer tlc.mutex.Unlock()

	handlerID := generateHandlerID()

	tlc.redemptionRequestedHandlers[handlerID] = &redemptionRequestedHandler{
		requesterAddress: requesterAddress,
		handler:          handler,
	}

	return subscription.NewEventSubscription(func() {
		tlc.mutex.Lock()
		defer tlc.mutex.Unlock()

		delete(tlc.redemptionRequestedHandlers, handlerID)
	}), nil
}

func (tlc *TBTCLocalChain) PastDepositRedemptionRequestedEvents(
	requesterAddress string,
	startBlock uint64,
) ([]*chain.DepositRedemptionRequestedEvent, error) {
	tlc.mutex.Lock()
	defer tlc.mutex.Unlock()

	events := make([]*chain.DepositRedemptionRequestedEvent, 0)
	for _, event := range tlc.redemptionRequestedEvents {
		if event.BlockNumber < startBlock {
			continue
		}
		if !matchesRequester(requesterAddress, event.RequesterAddress) {
			continue
		}

		copied := *event
		events = append(events, &copied)
	}

	return events, nil
}

func (tlc *TBTCLocalChain) PastDepositRegisteredPubkeyEvents(
	depositAddress string,
) ([]*chain.DepositRegisteredPubkeyEvent, error) {
	tlc.mutex.Lock()
	defer tlc.mutex.Unlock()

	deposit, ok := tlc.deposits[normalize(depositAddress)]
	if !ok {
		return []*chain.DepositRegisteredPubkeyEvent{}, nil
	}

	events := make([]*chain.DepositRegisteredPubkeyEvent, len(deposit.pubkeyEvents))
	copy(events, deposit.pubkeyEvents)

	return events, nil
}

func (tlc *TBTCLocalChain) OnSignatureSubmitted(
	keepAddress string,
	digest [32]byte,
	handler func(event *chain.SignatureSubmittedEvent),
) (subscription.EventSubscription, error) {
	tlc.mutex.Lock()
	defer tlc.mutex.Unlock()

	keep, ok := tlc.keeps[normalize(keepAddress)]
	if !ok {
		return nil, fmt.Errorf("no keep with address [%v]", keepAddress)
	}

	handlerID := generateHandlerID()

	keep.signatureSubmittedHandlers[handlerID] = &signatureSubmittedHandler{
		digest:  digest,
		handler: handler,
	}

	return subscription.NewEventSubscription(func() {
		tlc.mutex.Lock()
		defer tlc.mutex.Unlock()

		delete(keep.signatureSubmittedHandlers, handlerID)
	}), nil
}

func (tlc *TBTCLocalChain) PastSignatureSubmittedEvents(
	keepAddress string,
	digest [32]byte,
	startBlock uint64,
) ([]*chain.SignatureSubmittedEvent, error) {
	tlc.mutex.Lock()
	defer tlc.mutex.Unlock()

	tlc.logger.pastSignatureSubmittedEventsCalls++

	keep, ok := tlc.keeps[normalize(keepAddress)]
	if !ok {
		return nil, fmt.Errorf("no keep with address [%v]", keepAddress)
	}

	events := make([]*chain.SignatureSubmittedEvent, 0)
	for _, event := range keep.signatureSubmittedEvents {
		if event.BlockNumber < startBlock || event.Digest != digest {
			continue
		}

		copied := *event
		events = append(events, &copied)
	}

	return events, nil
}

func (tlc *TBTCLocalChain) OnKeepClosed(
	keepAddress string,
	handler func(event *chain.KeepClosedEvent),
) (subscription.EventSubscription, error) {
	tlc.mutex.Lock()
	defer tlc.mutex.Unlock()

	keep, ok := tlc.keeps[normalize(keepAddress)]
	if !ok {
		return nil, fmt.Errorf("no keep with address [%v]", keepAddress)
	}

	handlerID := generateHandlerID()

	keep.keepClosedHandlers[handlerID] = handler

	return subscription.NewEventSubscription(func() {
		tlc.mutex.Lock()
		defer tlc.mutex.Unlock()

		delete(keep.keepClosedHandlers, handlerID)
	}), nil
}

func (tlc *TBTCLocalChain) OnKeepTerminated(
	keepAddress string,
	handler func(event *chain.KeepTerminatedEvent),
) (subscription.EventSubscription, error) {
	tlc.mutex.Lock()
	defer tlc.mutex.Unlock()

	keep, ok := tlc.keeps[normalize(keepAddress)]
	if !ok {
		return nil, fmt.Errorf("no keep with address [%v]", keepAddress)
	}

	handlerID := generateHandlerID()

	keep.keepTerminatedHandlers[handlerID] = handler

	return subscription.NewEventSubscription(func() {
		tlc.mutex.Lock()
		defer tlc.mutex.Unlock()

		delete(keep.keepTerminatedHandlers, handlerID)
	}), nil
}

func normalize(address string) string {
	return common.HexToAddress(address).Hex()
}

func matchesRequester(filter, requesterAddress string) bool {
	return filter == "" || normalize(filter) == normalize(requesterAddress)
}

func generateHandlerID() int {
	// #nosec G404 (insecure random number source (rand))
	// Local chain implementation doesn't require secure randomness.
	return rand.Int()
}
