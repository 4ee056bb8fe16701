package ethereum

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/keep-network/keep-common/pkg/subscription"
)

// Delay which must be preserved before a new resubscription attempt.
// There is no sense to resubscribe immediately after the fail of current
// subscription because the publisher must have some time to recover.
var resubscriptionDelay = 5 * time.Second

// watchLogs subscribes to the given contract event and passes every received
// log to the handler. A failed subscription is retried after
// resubscriptionDelay until the returned subscription is unsubscribed.
func watchLogs(
	contract *bind.BoundContract,
	eventName string,
	handler func(log types.Log),
	query ...[]interface{},
) subscription.EventSubscription {
	errorChan := make(chan error)
	unsubscribeChan := make(chan struct{})

	signal := func(err error) {
		select {
		case errorChan <- err:
		case <-unsubscribeChan:
		}
	}

	watch := func() {
		logs, eventSubscription, err := contract.WatchLogs(
			&bind.WatchOpts{},
			eventName,
			query...,
		)
		if err != nil {
			signal(err) // trigger resubscription signal
			return
		}
		defer eventSubscription.Unsubscribe()

		for {
			select {
			case log := <-logs:
				if log.Removed {
					logger.Warningf(
						"ignoring removed [%s] log from block [%v]",
						eventName,
						log.BlockNumber,
					)
					continue
				}
				handler(log)
			case err := <-eventSubscription.Err():
				signal(err) // trigger resubscription signal
				return
			case <-unsubscribeChan:
				return
			}
		}
	}

	// trigger the resubscriber goroutine
	go func() {
		go watch()

		for {
			select {
			case <-unsubscribeChan:
				// shutdown the resubscriber goroutine on unsubscribe signal
				return
			case err := <-errorChan:
				logger.Warningf(
					"subscription to event [%s] terminated with error; "+
						"resubscription attempt will be performed after "+
						"the retry delay [%v]: [%v]",
					eventName,
					resubscriptionDelay,
					err,
				)

				select {
				case <-time.After(resubscriptionDelay):
					go watch()
				case <-unsubscribeChan:
					return
				}
			}
		}
	}()

	var once sync.Once
	return subscription.NewEventSubscription(func() {
		once.Do(func() {
			close(unsubscribeChan)
		})
	})
}

// pastLogs fetches all logs of the given contract event emitted since the
// start block, sorted by block number and log index.
func pastLogs(
	contract *bind.BoundContract,
	timeout time.Duration,
	eventName string,
	startBlock uint64,
	query ...[]interface{},
) ([]types.Log, error) {
	ctx, cancelCtx := context.WithTimeout(context.Background(), timeout)
	defer cancelCtx()

	logs, eventSubscription, err := contract.FilterLogs(
		&bind.FilterOpts{Start: startBlock, Context: ctx},
		eventName,
		query...,
	)
	if err != nil {
		return nil, err
	}
	defer eventSubscription.Unsubscribe()

	result := make([]types.Log, 0)
	collect := func(log types.Log) {
		if !log.Removed {
			result = append(result, log)
		}
	}

	for {
		select {
		case log := <-logs:
			collect(log)
		case err := <-eventSubscription.Err():
			if err != nil {
				return nil, err
			}

			// the producer is done; drain what is already buffered
			for {
				select {
				case log := <-logs:
					collect(log)
				default:
					sortLogs(result)
					return result, nil
				}
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func sortLogs(logs []types.Log) {
	sort.SliceStable(logs, func(i, j int) bool {
		if logs[i].BlockNumber != logs[j].BlockNumber {
			return logs[i].BlockNumber < logs[j].BlockNumber
		}
		return logs[i].Index < logs[j].Index
	})
}
