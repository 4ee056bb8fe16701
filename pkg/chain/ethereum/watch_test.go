package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"reflect"
	"sync"
	"testing"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var testKeepAddress = common.HexToAddress("0x8B3BccB3A3994681A1C1584DE4b4E8b23ed1Ed6d")

func TestPastLogs(t *testing.T) {
	digest := [32]byte{0x01}

	filterer := &testFilterer{
		pastLogs: []types.Log{
			{BlockNumber: 12, Index: 1},
			{BlockNumber: 10, Index: 3},
			{BlockNumber: 12, Index: 0},
			{BlockNumber: 11, Index: 0, Removed: true},
			{BlockNumber: 10, Index: 2},
		},
	}
	contractABI := parseTestABI(t, bondedECDSAKeepABIJSON)
	contract := bind.NewBoundContract(testKeepAddress, contractABI, nil, nil, filterer)

	logs, err := pastLogs(
		contract,
		time.Second,
		signatureSubmittedEventName,
		10,
		digestRule(digest),
	)
	if err != nil {
		t.Fatal(err)
	}

	type position struct {
		block uint64
		index uint
	}
	expectedPositions := []position{{10, 2}, {10, 3}, {12, 0}, {12, 1}}
	positions := make([]position, 0, len(logs))
	for _, log := range logs {
		positions = append(positions, position{log.BlockNumber, log.Index})
	}
	if !reflect.DeepEqual(expectedPositions, positions) {
		t.Errorf(
			"unexpected logs\nexpected: %v\nactual:   %v",
			expectedPositions,
			positions,
		)
	}

	queries := filterer.filterQueries()
	if len(queries) != 1 {
		t.Fatalf(
			"unexpected number of queries\nexpected: %v\nactual:   %v",
			1,
			len(queries),
		)
	}

	expectedTopics := [][]common.Hash{
		{contractABI.Events[signatureSubmittedEventName].ID},
		{common.Hash(digest)},
	}
	if !reflect.DeepEqual(expectedTopics, queries[0].Topics) {
		t.Errorf(
			"unexpected topics\nexpected: %v\nactual:   %v",
			expectedTopics,
			queries[0].Topics,
		)
	}
	if queries[0].FromBlock.Cmp(big.NewInt(10)) != 0 {
		t.Errorf(
			"unexpected start block\nexpected: %v\nactual:   %v",
			10,
			queries[0].FromBlock,
		)
	}
	if !reflect.DeepEqual([]common.Address{testKeepAddress}, queries[0].Addresses) {
		t.Errorf("unexpected addresses: [%v]", queries[0].Addresses)
	}
}

func TestPastLogs_FilterError(t *testing.T) {
	filterer := &testFilterer{filterError: fmt.Errorf("request timeout")}
	contract := bind.NewBoundContract(
		testKeepAddress,
		parseTestABI(t, bondedECDSAKeepABIJSON),
		nil,
		nil,
		filterer,
	)

	_, err := pastLogs(contract, time.Second, signatureSubmittedEventName, 0)
	if err == nil || err.Error() != "request timeout" {
		t.Errorf(
			"unexpected error\nexpected: %v\nactual:   %v",
			"request timeout",
			err,
		)
	}
}

func TestWatchLogs_Resubscribe(t *testing.T) {
	defaultDelay := resubscriptionDelay
	resubscriptionDelay = 10 * time.Millisecond
	defer func() { resubscriptionDelay = defaultDelay }()

	filterer := &testFilterer{subscribeFailures: 1}
	contract := bind.NewBoundContract(
		testKeepAddress,
		parseTestABI(t, bondedECDSAKeepABIJSON),
		nil,
		nil,
		filterer,
	)

	logChan := make(chan types.Log, 10)
	eventSubscription := watchLogs(
		contract,
		signatureSubmittedEventName,
		func(log types.Log) {
			logChan <- log
		},
	)

	// the first attempt fails and the second one is installed after the delay
	waitForCondition(t, func() bool { return filterer.subscriptionsCount() == 1 })
	if attempts := filterer.subscribeAttemptsCount(); attempts != 2 {
		t.Errorf(
			"unexpected number of subscribe attempts\nexpected: %v\nactual:   %v",
			2,
			attempts,
		)
	}

	first := filterer.subscription(0)
	first.logs <- types.Log{BlockNumber: 5, Removed: true}
	first.logs <- types.Log{BlockNumber: 6}
	assertReceivedLog(t, logChan, 6)

	// a failed subscription is replaced by a new one
	first.errChan <- fmt.Errorf("connection reset")
	waitForCondition(t, func() bool { return filterer.subscriptionsCount() == 2 })

	if !first.isUnsubscribed() {
		t.Errorf("failed subscription should be unsubscribed")
	}

	second := filterer.subscription(1)
	second.logs <- types.Log{BlockNumber: 7}
	assertReceivedLog(t, logChan, 7)

	eventSubscription.Unsubscribe()
	eventSubscription.Unsubscribe()

	waitForCondition(t, second.isUnsubscribed)

	time.Sleep(5 * resubscriptionDelay)
	if count := filterer.subscriptionsCount(); count != 2 {
		t.Errorf(
			"unexpected number of subscriptions after unsubscribe\nexpected: %v\nactual:   %v",
			2,
			count,
		)
	}

	select {
	case log := <-logChan:
		t.Errorf("unexpected log from block [%v]", log.BlockNumber)
	default:
	}
}

func assertReceivedLog(t *testing.T, logChan chan types.Log, expectedBlock uint64) {
	select {
	case log := <-logChan:
		if log.BlockNumber != expectedBlock {
			t.Errorf(
				"unexpected log block\nexpected: %v\nactual:   %v",
				expectedBlock,
				log.BlockNumber,
			)
		}
	case <-time.After(time.Second):
		t.Fatalf("log from block [%v] not received", expectedBlock)
	}
}

func waitForCondition(t *testing.T, condition func() bool) {
	deadline := time.Now().Add(5 * time.Second)
	for !condition() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// testFilterer serves logs from memory in place of an ethereum client.
type testFilterer struct {
	mutex sync.Mutex

	pastLogs    []types.Log
	filterError error
	queries     []ethereum.FilterQuery

	subscribeFailures int
	subscribeAttempts int
	subscriptions     []*testSubscription
}

func (tf *testFilterer) FilterLogs(
	ctx context.Context,
	query ethereum.FilterQuery,
) ([]types.Log, error) {
	tf.mutex.Lock()
	defer tf.mutex.Unlock()

	tf.queries = append(tf.queries, query)

	if tf.filterError != nil {
		return nil, tf.filterError
	}

	return append([]types.Log{}, tf.pastLogs...), nil
}

func (tf *testFilterer) SubscribeFilterLogs(
	ctx context.Context,
	query ethereum.FilterQuery,
	logs chan<- types.Log,
) (ethereum.Subscription, error) {
	tf.mutex.Lock()
	defer tf.mutex.Unlock()

	tf.subscribeAttempts++
	if tf.subscribeAttempts <= tf.subscribeFailures {
		return nil, fmt.Errorf("connection refused")
	}

	subscription := &testSubscription{
		logs:    logs,
		errChan: make(chan error, 1),
	}
	tf.subscriptions = append(tf.subscriptions, subscription)

	return subscription, nil
}

func (tf *testFilterer) filterQueries() []ethereum.FilterQuery {
	tf.mutex.Lock()
	defer tf.mutex.Unlock()

	return append([]ethereum.FilterQuery{}, tf.queries...)
}

func (tf *testFilterer) subscribeAttemptsCount() int {
	tf.mutex.Lock()
	defer tf.mutex.Unlock()

	return tf.subscribeAttempts
}

func (tf *testFilterer) subscriptionsCount() int {
	tf.mutex.Lock()
	defer tf.mutex.Unlock()

	return len(tf.subscriptions)
}

func (tf *testFilterer) subscription(index int) *testSubscription {
	tf.mutex.Lock()
	defer tf.mutex.Unlock()

	return tf.subscriptions[index]
}

type testSubscription struct {
	logs    chan<- types.Log
	errChan chan error

	mutex        sync.Mutex
	unsubscribed bool
}

func (ts *testSubscription) Unsubscribe() {
	ts.mutex.Lock()
	defer ts.mutex.Unlock()

	ts.unsubscribed = true
}

func (ts *testSubscription) Err() <-chan error {
	return ts.errChan
}

func (ts *testSubscription) isUnsubscribed() bool {
	ts.mutex.Lock()
	defer ts.mutex.Unlock()

	return ts.unsubscribed
}
