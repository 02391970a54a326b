package concurrent

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPool(t *testing.T) {
	testCases := []struct {
		name       string
		numWorkers int
		numJobs    int
	}{
		{name: "single worker", numWorkers: 1, numJobs: 10},
		{name: "more workers than jobs", numWorkers: 16, numJobs: 3},
		{name: "default workers", numWorkers: 0, numJobs: 100},
		{name: "no jobs", numWorkers: 4, numJobs: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			wp := NewWorkerPool[int, int](tc.numWorkers, tc.numJobs)
			assert.Greater(t, wp.NumWorkers(), 0)
			wp.Start(func(job int) int {
				return job * job
			})
			for i := 0; i < tc.numJobs; i++ {
				wp.AddJob(i)
			}
			wp.Close()
			wp.Wait()

			got := make([]int, 0, tc.numJobs)
			for res := range wp.CollectResults() {
				got = append(got, res)
			}
			sort.Ints(got)

			want := make([]int, 0, tc.numJobs)
			for i := 0; i < tc.numJobs; i++ {
				want = append(want, i*i)
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestProcessAll(t *testing.T) {
	jobs := make([]int, 1000)
	for i := range jobs {
		jobs[i] = i
	}

	sum := 0
	count := 0
	ProcessAll(jobs, 8, func(job int) int {
		return job + 1
	}, func(res int) {
		sum += res
		count++
	})

	assert.Equal(t, 1000, count)
	assert.Equal(t, 1000*1001/2, sum)
}
