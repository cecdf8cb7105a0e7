package renderer

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestBindingSize(t *testing.T) {
	tests := []struct {
		name   string
		layout wgpu.BufferBindingLayout
		want   uint64
	}{
		{
			name:   "dynamic offset binds the payload",
			layout: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, HasDynamicOffset: true, MinBindingSize: 8},
			want:   8,
		},
		{
			name:   "static binding spans the buffer",
			layout: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: 80},
			want:   wgpu.WholeSize,
		},
		{
			name:   "dynamic without a size falls back to whole",
			layout: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, HasDynamicOffset: true},
			want:   wgpu.WholeSize,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bindingSize(tt.layout); got != tt.want {
				t.Fatalf("bindingSize = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBufferUsage(t *testing.T) {
	if got := bufferUsage(wgpu.BufferBindingTypeUniform); got != wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst {
		t.Fatalf("uniform usage = %v", got)
	}
	if got := bufferUsage(wgpu.BufferBindingTypeReadOnlyStorage); got != wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst {
		t.Fatalf("storage usage = %v", got)
	}
}

func TestPresentModeMapping(t *testing.T) {
	if wgpuPresentMode(PresentModeVSync) != wgpu.PresentModeFifo {
		t.Fatal("vsync should map to FIFO")
	}
	if wgpuPresentMode(PresentModeUncapped) != wgpu.PresentModeImmediate {
		t.Fatal("uncapped should map to immediate")
	}
}
