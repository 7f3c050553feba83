package tensor

import (
	"runtime"
	"sync"
)

// matVecParallelThreshold is the minimum number of multiply-accumulate
// operations before MatVecInt32 fans rows out to the worker pool. Below
// this the dispatch overhead dominates.
const matVecParallelThreshold = 1 << 16

type matVecTask struct {
	dst  []int32
	w    *QMat
	x    []int8
	bias []int32

	rs, re int
	done   chan struct{}
}

type matVecPool struct {
	size  int
	tasks chan matVecTask
}

var (
	matVecWorkPool *matVecPool
	matVecPoolOnce sync.Once
)

func getMatVecPool() *matVecPool {
	matVecPoolOnce.Do(func() {
		size := runtime.GOMAXPROCS(0)
		if size < 1 {
			size = 1
		}
		p := &matVecPool{
			size:  size,
			tasks: make(chan matVecTask, size*2),
		}
		for i := 0; i < size; i++ {
			go func() {
				for task := range p.tasks {
					matVecInt32Range(task.dst, task.w, task.x, task.bias, task.rs, task.re)
					task.done <- struct{}{}
				}
			}()
		}
		matVecWorkPool = p
	})
	return matVecWorkPool
}

// MatVecInt32 computes dst = w*x + bias where w is an int8 matrix, x an
// int8 vector and dst an int32 accumulator vector. Each accumulator entry
// is the exact 32-bit integer dot product of one weight row with x plus
// the row's bias; no intermediate saturation is applied. bias may be nil.
//
// Rows are independent, so large matrices are split across the worker
// pool. The result is identical regardless of worker count.
func MatVecInt32(dst []int32, w *QMat, x []int8, bias []int32) {
	if len(dst) != w.R || len(x) != w.C {
		panic("matvec dimension mismatch")
	}
	if bias != nil && len(bias) != w.R {
		panic("matvec bias length mismatch")
	}
	if w.R*w.C < matVecParallelThreshold {
		matVecInt32Range(dst, w, x, bias, 0, w.R)
		return
	}

	pool := getMatVecPool()
	chunk := (w.R + pool.size - 1) / pool.size
	done := make(chan struct{}, pool.size)
	tasks := 0
	for rs := 0; rs < w.R; rs += chunk {
		re := rs + chunk
		if re > w.R {
			re = w.R
		}
		pool.tasks <- matVecTask{dst: dst, w: w, x: x, bias: bias, rs: rs, re: re, done: done}
		tasks++
	}
	for i := 0; i < tasks; i++ {
		<-done
	}
}

func matVecInt32Range(dst []int32, w *QMat, x []int8, bias []int32, rs, re int) {
	for i := rs; i < re; i++ {
		row := w.Row(i)
		var acc int32
		for j, v := range row {
			acc += int32(v) * int32(x[j])
		}
		if bias != nil {
			acc += bias[i]
		}
		dst[i] = acc
	}
}

// MatVec computes dst = w*x + bias in float32, used for the calibration
// forward pass over the floating-point model. bias may be nil.
func MatVec(dst []float32, w *Mat, x []float32, bias []float32) {
	if len(dst) != w.R || len(x) != w.C {
		panic("matvec dimension mismatch")
	}
	for i := 0; i < w.R; i++ {
		row := w.Row(i)
		var sum float32
		for j, v := range row {
			sum += v * x[j]
		}
		if bias != nil {
			sum += bias[i]
		}
		dst[i] = sum
	}
}
