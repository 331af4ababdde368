// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"

	"github.com/gogpu/framerender"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// CompileShaderToSPIRV compiles WGSL source to SPIR-V words.
func CompileShaderToSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return spirvCode, nil
}

// Program is a compiled kernel: one render pipeline drawing a
// full-screen triangle.
type Program struct {
	dev      *Device
	name     string
	format   gputypes.TextureFormat
	shader   hal.ShaderModule
	pipeline hal.RenderPipeline

	destroyed bool
}

// layouts returns the shared bind group and pipeline layouts, creating
// them on first use. Every kernel reads one texture at binding 0.
func (d *Device) layouts() (hal.PipelineLayout, error) {
	if d.pipeLayout != nil {
		return d.pipeLayout, nil
	}
	bindLayout, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "kernel_source_layout",
		Entries: []gputypes.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeUnfilterableFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("create source layout: %w", err)
	}
	pipeLayout, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "kernel_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{bindLayout},
	})
	if err != nil {
		d.device.DestroyBindGroupLayout(bindLayout)
		return nil, fmt.Errorf("create pipeline layout: %w", err)
	}
	d.bindLayout, d.pipeLayout = bindLayout, pipeLayout
	return pipeLayout, nil
}

// CreateProgram implements framerender.Device. The pipeline targets
// framerender.DefaultFormat.
func (d *Device) CreateProgram(k framerender.Kernel) (framerender.Program, error) {
	spirv, err := CompileShaderToSPIRV(k.WGSL)
	if err != nil {
		return nil, fmt.Errorf("native: kernel %q: %w", k.Name, err)
	}
	pipeLayout, err := d.layouts()
	if err != nil {
		return nil, fmt.Errorf("native: kernel %q: %w", k.Name, err)
	}

	shader, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  k.Name + "_shader",
		Source: hal.ShaderSource{WGSL: k.WGSL, SPIRV: spirv},
	})
	if err != nil {
		return nil, fmt.Errorf("native: create %q shader: %w", k.Name, err)
	}

	pipeline, err := d.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  k.Name + "_pipeline",
		Layout: pipeLayout,
		Vertex: hal.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
		},
		Fragment: &hal.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{{
				Format:    framerender.DefaultFormat,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.DefaultMultisampleState(),
	})
	if err != nil {
		d.device.DestroyShaderModule(shader)
		return nil, fmt.Errorf("native: create %q pipeline: %w", k.Name, err)
	}

	framerender.Logger().Debug("native: program created", "kernel", k.Name, "spirv_words", len(spirv))
	return &Program{
		dev:      d,
		name:     k.Name,
		format:   framerender.DefaultFormat,
		shader:   shader,
		pipeline: pipeline,
	}, nil
}

// Draw runs the kernel over the viewport, clipped to dst. A zero viewport
// covers all of dst.
func (p *Program) Draw(src, dst framerender.Texture) error {
	if p.destroyed {
		return ErrDestroyed
	}
	d := p.dev
	s, err := d.texture(src)
	if err != nil {
		return fmt.Errorf("native: draw %q source: %w", p.name, err)
	}
	t, err := d.texture(dst)
	if err != nil {
		return fmt.Errorf("native: draw %q target: %w", p.name, err)
	}
	if t.format != p.format {
		return fmt.Errorf("native: draw %q: target format %v, pipeline wants %v", p.name, t.format, p.format)
	}

	w, h := t.width, t.height
	if d.vw > 0 && d.vh > 0 {
		w, h = min(w, d.vw), min(h, d.vh)
	}

	bindGroup, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  p.name + "_bind",
		Layout: d.bindLayout,
		Entries: []gputypes.BindGroupEntry{{
			Binding:  0,
			Resource: gputypes.TextureViewBinding{TextureView: s.view.NativeHandle()},
		}},
	})
	if err != nil {
		return fmt.Errorf("native: draw %q: create bind group: %w", p.name, err)
	}
	defer d.device.DestroyBindGroup(bindGroup)

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: p.name + "_encoder"})
	if err != nil {
		return fmt.Errorf("native: draw %q: create command encoder: %w", p.name, err)
	}
	if err := encoder.BeginEncoding(p.name); err != nil {
		return fmt.Errorf("native: draw %q: begin encoding: %w", p.name, err)
	}

	// Sources rest as render attachments; sample them as bindings.
	encoder.TransitionTextures(usageBarrier(s.tex,
		gputypes.TextureUsageRenderAttachment, gputypes.TextureUsageTextureBinding))
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: p.name + "_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    t.view,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}},
	})
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, bindGroup, nil)
	rp.SetViewport(0, 0, float32(w), float32(h), 0, 1)
	rp.Draw(3, 1, 0, 0)
	rp.End()
	encoder.TransitionTextures(usageBarrier(s.tex,
		gputypes.TextureUsageTextureBinding, gputypes.TextureUsageRenderAttachment))

	if err := d.submit(encoder); err != nil {
		return fmt.Errorf("native: draw %q: %w", p.name, err)
	}
	return nil
}

// Destroy releases the pipeline and shader module.
func (p *Program) Destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true
	if p.dev.device == nil {
		return
	}
	p.dev.device.DestroyRenderPipeline(p.pipeline)
	p.dev.device.DestroyShaderModule(p.shader)
}
