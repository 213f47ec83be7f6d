//go:build opencl

package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jgillich/go-opencl/cl"
)

// Each wave is uploaded as four floats: kind, spatial wavenumber k, amplitude
// and the temporal phase 2*pi*freq*t reduced modulo 2*pi on the host so the
// device never sees large float32 phases.
const waveParamStride = 4

const sampleKernelSource = `__kernel void sample_waves(
    const int width,
    const int wave_count,
    const float gap,
    __global const float* params,
    __global float* out)
{
    int gid = get_global_id(0);
    if (gid >= width * wave_count) {
        return;
    }
    int w = gid / width;
    int i = gid - w * width;
    __global const float* p = params + w * 4;
    float phase = p[3] - p[1] * ((float)i * gap);
    float v = p[0] > 0.5f ? cos(phase) : sin(phase);
    out[gid] = p[2] * v;
}`

type openCLSampler struct {
	context    *cl.Context
	queue      *cl.CommandQueue
	program    *cl.Program
	kernel     *cl.Kernel
	paramBuf   *cl.MemObject
	outBuf     *cl.MemObject
	paramCap   int
	outCap     int
	params     []float32
	out        []float32
	deviceName string
}

// NewOpenCLSampler compiles the sampling kernel on the first GPU, falling back
// to the first CPU device.
func NewOpenCLSampler() (Sampler, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms; install OpenCL drivers and verify with `clinfo`"
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	if len(platforms) == 0 {
		return nil, errors.New("no OpenCL platforms available")
	}
	device := pickDevice(platforms, cl.DeviceTypeGPU)
	if device == nil {
		device = pickDevice(platforms, cl.DeviceTypeCPU)
	}
	if device == nil {
		return nil, errors.New("no suitable OpenCL devices found")
	}

	context, err := cl.CreateContext([]*cl.Device{device})
	if err != nil {
		return nil, fmt.Errorf("creating OpenCL context: %w", err)
	}
	s := &openCLSampler{context: context, deviceName: device.Name()}
	s.queue, err = context.CreateCommandQueue(device, 0)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	s.program, err = context.CreateProgramWithSource([]string{sampleKernelSource})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating OpenCL program: %w", err)
	}
	if err := s.program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		s.Close()
		if buildErr, ok := err.(cl.BuildError); ok {
			return nil, fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return nil, fmt.Errorf("building OpenCL program: %w", err)
	}
	s.kernel, err = s.program.CreateKernel("sample_waves")
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating OpenCL kernel: %w", err)
	}
	return s, nil
}

func pickDevice(platforms []*cl.Platform, kind cl.DeviceType) *cl.Device {
	for _, p := range platforms {
		devices, err := p.GetDevices(kind)
		if err != nil && err != cl.ErrDeviceNotFound {
			continue
		}
		if len(devices) > 0 {
			return devices[0]
		}
	}
	return nil
}

func (s *openCLSampler) Name() string { return "opencl:" + s.deviceName }

// ensureBuffers grows the device buffers to hold waveCount waves of width samples.
func (s *openCLSampler) ensureBuffers(waveCount, width int) error {
	paramLen := waveCount * waveParamStride
	if paramLen > s.paramCap {
		if s.paramBuf != nil {
			s.paramBuf.Release()
			s.paramBuf = nil
		}
		buf, err := s.context.CreateEmptyBuffer(cl.MemReadOnly, paramLen*4)
		if err != nil {
			s.paramCap = 0
			return fmt.Errorf("allocating parameter buffer: %w", err)
		}
		s.paramBuf, s.paramCap = buf, paramLen
	}
	outLen := waveCount * width
	if outLen > s.outCap {
		if s.outBuf != nil {
			s.outBuf.Release()
			s.outBuf = nil
		}
		buf, err := s.context.CreateEmptyBuffer(cl.MemWriteOnly, outLen*4)
		if err != nil {
			s.outCap = 0
			return fmt.Errorf("allocating output buffer: %w", err)
		}
		s.outBuf, s.outCap = buf, outLen
	}
	if cap(s.params) < paramLen {
		s.params = make([]float32, paramLen)
	}
	s.params = s.params[:paramLen]
	if cap(s.out) < outLen {
		s.out = make([]float32, outLen)
	}
	s.out = s.out[:outLen]
	return nil
}

func (s *openCLSampler) Sample(grid *SampleGrid, waves []WaveEntry, gap, t float64) error {
	width := grid.Width()
	if len(waves) == 0 || width == 0 {
		grid.sumInto()
		return nil
	}
	if err := s.ensureBuffers(len(waves), width); err != nil {
		return err
	}
	for i, e := range waves {
		w := e.Wave
		base := i * waveParamStride
		if w.Kind() == Cos {
			s.params[base] = 1
		} else {
			s.params[base] = 0
		}
		s.params[base+1] = float32(2 * math.Pi / w.Wavelength())
		s.params[base+2] = float32(w.Amplitude())
		cycles := float64(w.Frequency()) * t
		s.params[base+3] = float32(2 * math.Pi * (cycles - math.Floor(cycles)))
	}
	if _, err := s.queue.EnqueueWriteBufferFloat32(s.paramBuf, true, 0, s.params, nil); err != nil {
		return fmt.Errorf("writing parameter buffer: %w", err)
	}
	if err := s.kernel.SetArgs(
		int32(width),
		int32(len(waves)),
		float32(gap),
		s.paramBuf,
		s.outBuf,
	); err != nil {
		return fmt.Errorf("setting kernel arguments: %w", err)
	}
	if _, err := s.queue.EnqueueNDRangeKernel(s.kernel, nil, []int{len(s.out)}, nil, nil); err != nil {
		return fmt.Errorf("enqueueing kernel: %w", err)
	}
	if _, err := s.queue.EnqueueReadBufferFloat32(s.outBuf, true, 0, s.out, nil); err != nil {
		return fmt.Errorf("reading output buffer: %w", err)
	}
	for i := range waves {
		row := grid.Row(i + 1)
		src := s.out[i*width : (i+1)*width]
		for x, v := range src {
			row[x] = float64(v)
		}
	}
	grid.sumInto()
	return nil
}

func (s *openCLSampler) Close() {
	if s.outBuf != nil {
		s.outBuf.Release()
		s.outBuf = nil
	}
	if s.paramBuf != nil {
		s.paramBuf.Release()
		s.paramBuf = nil
	}
	if s.kernel != nil {
		s.kernel.Release()
		s.kernel = nil
	}
	if s.program != nil {
		s.program.Release()
		s.program = nil
	}
	if s.queue != nil {
		s.queue.Release()
		s.queue = nil
	}
	if s.context != nil {
		s.context.Release()
		s.context = nil
	}
}
