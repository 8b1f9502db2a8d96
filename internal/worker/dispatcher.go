// Package worker 后台匹配任务的进程内队列。
// 有界channel + 固定worker池；队列满时降级为阻塞投递，任务不丢弃。
package worker

import (
	"context"
	"sync"

	"FunRadar/internal/metrics"

	"github.com/sirupsen/logrus"
)

// MatchRunner 单次匹配任务的执行方
type MatchRunner interface {
	GenerateSuggestions(ctx context.Context, eventID uint64) error
}

type Dispatcher struct {
	queue   chan uint64
	runner  MatchRunner
	logger  *logrus.Logger
	workers int
	wg      sync.WaitGroup
}

func NewDispatcher(runner MatchRunner, logger *logrus.Logger, queueSize, workers int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	if workers <= 0 {
		workers = 2
	}
	return &Dispatcher{
		queue:   make(chan uint64, queueSize),
		runner:  runner,
		logger:  logger,
		workers: workers,
	}
}

// Start 启动worker池，ctx取消后各worker处理完手头任务即退出
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.loop(ctx, i)
	}
	d.logger.WithField("workers", d.workers).Info("匹配worker池已启动")
}

func (d *Dispatcher) loop(ctx context.Context, id int) {
	defer d.wg.Done()
	log := d.logger.WithField("worker", id)
	for {
		select {
		case <-ctx.Done():
			return
		case eventID := <-d.queue:
			if err := d.runner.GenerateSuggestions(ctx, eventID); err != nil {
				// 活动留在matching，失败原因已由runner记录
				log.WithError(err).WithField("event_id", eventID).Error("匹配任务执行失败")
			}
		}
	}
}

// Schedule 投递一次匹配任务。正常非阻塞；队列满时转后台阻塞投递，
// 保证至少一次送达（重复投递无害，runner对非matching活动no-op）。
func (d *Dispatcher) Schedule(eventID uint64) {
	select {
	case d.queue <- eventID:
	default:
		metrics.MatchJobsDropped.Inc()
		d.logger.WithField("event_id", eventID).Warn("匹配队列已满，转后台投递")
		go func() { d.queue <- eventID }()
	}
}

// Wait 等待全部worker退出，进程收尾时调用
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
