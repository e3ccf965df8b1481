package services

import (
	"context"
	"errors"
	"log"
	"sync"
)

var ErrWorkerStopped = errors.New("transcription worker stopped")

type TranscriptionWorker interface {
	Start(ctx context.Context)
	Stop()
	Transcribe(ctx context.Context, audioPath string) (string, error)
	Ready() bool
}

type transcriptionJob struct {
	ctx       context.Context
	audioPath string
	reply     chan transcriptionReply
}

type transcriptionReply struct {
	text string
	err  error
}

// worker runs speech inference on a fixed set of goroutines. At most
// concurrency inferences run at once; further jobs wait in jobQueue.
type worker struct {
	transcriber Transcriber
	jobQueue    chan transcriptionJob
	concurrency int
	wg          sync.WaitGroup
	stopChan    chan struct{}
	stopOnce    sync.Once
}

func NewTranscriptionWorker(transcriber Transcriber, concurrency int) TranscriptionWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &worker{
		transcriber: transcriber,
		jobQueue:    make(chan transcriptionJob, 100),
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
	}
}

// Start implements TranscriptionWorker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting transcription worker with %d concurrent workers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}
}

// Stop implements TranscriptionWorker. Jobs still queued are answered with
// ErrWorkerStopped.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		log.Println("🛑 Stopping transcription worker...")
		close(w.stopChan)
		w.wg.Wait()
		for {
			select {
			case job := <-w.jobQueue:
				job.reply <- transcriptionReply{err: ErrWorkerStopped}
			default:
				log.Println("✅ Transcription worker stopped")
				return
			}
		}
	})
}

// Ready implements TranscriptionWorker.
func (w *worker) Ready() bool {
	return w.transcriber.Ready()
}

// Transcribe implements TranscriptionWorker. It blocks until a worker has
// finished the job or ctx is done.
func (w *worker) Transcribe(ctx context.Context, audioPath string) (string, error) {
	job := transcriptionJob{
		ctx:       ctx,
		audioPath: audioPath,
		reply:     make(chan transcriptionReply, 1),
	}

	select {
	case <-w.stopChan:
		return "", ErrWorkerStopped
	default:
	}

	select {
	case w.jobQueue <- job:
	case <-w.stopChan:
		return "", ErrWorkerStopped
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case r := <-job.reply:
		return r.text, r.err
	case <-w.stopChan:
		return "", ErrWorkerStopped
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case job := <-w.jobQueue:
			if err := job.ctx.Err(); err != nil {
				job.reply <- transcriptionReply{err: err}
				continue
			}
			log.Printf("👷 Worker #%d transcribing %s\n", workerID, job.audioPath)
			text, err := w.transcriber.Transcribe(job.ctx, job.audioPath)
			if err != nil {
				log.Printf("❌ Worker #%d failed to transcribe %s: %v\n", workerID, job.audioPath, err)
			}
			job.reply <- transcriptionReply{text: text, err: err}
		}
	}
}
