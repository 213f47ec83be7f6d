//go:build !opencl

package engine

import "errors"

// NewOpenCLSampler is unavailable without the opencl build tag.
func NewOpenCLSampler() (Sampler, error) {
	return nil, errors.New("OpenCL support is not enabled; rebuild with -tags opencl")
}
