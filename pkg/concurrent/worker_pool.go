package concurrent

import (
	"runtime"
	"sync"
)

type Job[T any] struct {
	ID      int
	JobItem T
}

type JobFunc[T any, G any] func(job T) G

// WorkerPool runs JobFunc over jobs with a fixed number of goroutines. Every job writes only
// its own result slot, so results come back in job id order no matter how jobs were scheduled.
type WorkerPool[T any, G any] struct {
	numWorkers int
	jobQueue   chan Job[T]
	results    []G
	wg         sync.WaitGroup
}

func NewWorkerPool[T any, G any](numWorkers, numJobs int) *WorkerPool[T, G] {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool[T, G]{
		numWorkers: numWorkers,
		jobQueue:   make(chan Job[T], numWorkers*2),
		results:    make([]G, numJobs),
	}
}

func (wp *WorkerPool[T, G]) Start(fn JobFunc[T, G]) {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(fn)
	}
}

func (wp *WorkerPool[T, G]) worker(fn JobFunc[T, G]) {
	defer wp.wg.Done()
	for job := range wp.jobQueue {
		wp.results[job.ID] = fn(job.JobItem)
	}
}

// AddJob enqueues a job. id must be in [0, numJobs).
func (wp *WorkerPool[T, G]) AddJob(id int, item T) {
	wp.jobQueue <- Job[T]{ID: id, JobItem: item}
}

// Close stops accepting jobs and waits for the running ones.
func (wp *WorkerPool[T, G]) Close() {
	close(wp.jobQueue)
	wp.wg.Wait()
}

// CollectResults returns the results in job id order. Only valid after Close.
func (wp *WorkerPool[T, G]) CollectResults() []G {
	return wp.results
}

// ParallelMap applies fn to every item and returns the results in input order.
func ParallelMap[T any, G any](numWorkers int, items []T, fn JobFunc[T, G]) []G {
	wp := NewWorkerPool[T, G](numWorkers, len(items))
	wp.Start(fn)
	for i, item := range items {
		wp.AddJob(i, item)
	}
	wp.Close()
	return wp.CollectResults()
}
