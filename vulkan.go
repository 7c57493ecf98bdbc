package texcache

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// VulkanBackend is the one native Backend implementation. It owns nothing
// but the device handle; resource lifetime belongs to the surfaces.
type VulkanBackend struct {
	device vk.Device
}

// NewVulkanBackend wraps an already initialized logical device.
func NewVulkanBackend(device vk.Device) *VulkanBackend {
	return &VulkanBackend{device: device}
}

func (b *VulkanBackend) CreateImage(params SurfaceParams) (Image, error) {
	var info = vk.ImageCreateInfo{}
	info.SType = vk.StructureTypeImageCreateInfo
	info.ImageType = vkImageType(params.Target)
	info.Extent.Width = params.Width
	info.Extent.Height = params.Height
	info.Extent.Depth = params.MipDepth(0)
	if params.Target != Target3D {
		info.Extent.Depth = 1
	}
	info.MipLevels = params.NumLevels
	info.ArrayLayers = params.NumLayers
	info.Format = vkFormat(params.Format)
	info.Tiling = vk.ImageTilingOptimal
	info.InitialLayout = vk.ImageLayoutUndefined
	info.Usage = vkImageUsage(params.Usage)
	info.Samples = vk.SampleCount1Bit
	info.SharingMode = vk.SharingModeExclusive
	if params.Target == TargetCube || params.Target == TargetCubeArray {
		info.Flags = vk.ImageCreateFlags(vk.ImageCreateCubeCompatibleBit)
	}

	var image vk.Image
	if err := vk.Error(vk.CreateImage(b.device, &info, nil, &image)); err != nil {
		return nil, fmt.Errorf("%w: vkCreateImage: %v", ErrResourceExhausted, err)
	}
	return &vulkanImage{device: b.device, handle: image, format: info.Format}, nil
}

func (b *VulkanBackend) CreateBuffer(size uint64, usage BufferUsage) (Buffer, error) {
	info := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       vkBufferUsage(usage),
		SharingMode: vk.SharingModeExclusive,
	}

	var buffer vk.Buffer
	if err := vk.Error(vk.CreateBuffer(b.device, &info, nil, &buffer)); err != nil {
		return nil, fmt.Errorf("%w: vkCreateBuffer: %v", ErrResourceExhausted, err)
	}
	return &vulkanBuffer{device: b.device, handle: buffer, size: size}, nil
}

type vulkanImage struct {
	device vk.Device
	handle vk.Image
	format vk.Format
}

func (i *vulkanImage) MemoryRequirements() MemoryRequirements {
	var mr vk.MemoryRequirements
	vk.GetImageMemoryRequirements(i.device, i.handle, &mr)
	mr.Deref()
	return MemoryRequirements{Size: uint64(mr.Size), Alignment: uint64(mr.Alignment), TypeBits: mr.MemoryTypeBits}
}

func (i *vulkanImage) BindCommit(c MemoryCommit) error {
	commit, ok := c.(*VulkanCommit)
	if !ok {
		return fmt.Errorf("texcache: binding a non-vulkan commit to a vulkan image")
	}
	return vk.Error(vk.BindImageMemory(i.device, i.handle, commit.Memory(), vk.DeviceSize(commit.Offset())))
}

func (i *vulkanImage) CreateView(info ImageViewInfo) (ImageView, error) {
	createInfo := &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    i.handle,
		ViewType: vkViewType(info.Target),
		Format:   i.format,
		Components: vk.ComponentMapping{
			R: vkSwizzle(info.Swizzle[0]),
			G: vkSwizzle(info.Swizzle[1]),
			B: vkSwizzle(info.Swizzle[2]),
			A: vkSwizzle(info.Swizzle[3]),
		},
		SubresourceRange: vkRange(info.Range),
	}

	var view vk.ImageView
	if err := vk.Error(vk.CreateImageView(i.device, createInfo, nil, &view)); err != nil {
		return nil, fmt.Errorf("%w: vkCreateImageView: %v", ErrResourceExhausted, err)
	}
	return &vulkanImageView{device: i.device, handle: view}, nil
}

func (i *vulkanImage) Destroy() {
	vk.DestroyImage(i.device, i.handle, nil)
}

// VK returns the native handle for binding by the rasterizer.
func (i *vulkanImage) VK() vk.Image {
	return i.handle
}

type vulkanBuffer struct {
	device vk.Device
	handle vk.Buffer
	size   uint64
}

func (b *vulkanBuffer) MemoryRequirements() MemoryRequirements {
	var mr vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(b.device, b.handle, &mr)
	mr.Deref()
	return MemoryRequirements{Size: uint64(mr.Size), Alignment: uint64(mr.Alignment), TypeBits: mr.MemoryTypeBits}
}

func (b *vulkanBuffer) BindCommit(c MemoryCommit) error {
	commit, ok := c.(*VulkanCommit)
	if !ok {
		return fmt.Errorf("texcache: binding a non-vulkan commit to a vulkan buffer")
	}
	return vk.Error(vk.BindBufferMemory(b.device, b.handle, commit.Memory(), vk.DeviceSize(commit.Offset())))
}

func (b *vulkanBuffer) CreateTypedView(format PixelFormat) (BufferView, error) {
	info := vk.BufferViewCreateInfo{
		SType:  vk.StructureTypeBufferViewCreateInfo,
		Buffer: b.handle,
		Format: vkFormat(format),
		Offset: 0,
		Range:  vk.DeviceSize(b.size),
	}

	var view vk.BufferView
	if err := vk.Error(vk.CreateBufferView(b.device, &info, nil, &view)); err != nil {
		return nil, fmt.Errorf("%w: vkCreateBufferView: %v", ErrResourceExhausted, err)
	}
	return &vulkanBufferView{device: b.device, handle: view}, nil
}

func (b *vulkanBuffer) Destroy() {
	vk.DestroyBuffer(b.device, b.handle, nil)
}

// VK returns the native handle for binding by the rasterizer.
func (b *vulkanBuffer) VK() vk.Buffer {
	return b.handle
}

type vulkanImageView struct {
	device vk.Device
	handle vk.ImageView
}

func (v *vulkanImageView) Destroy() {
	vk.DestroyImageView(v.device, v.handle, nil)
}

// VK returns the native handle for binding by the rasterizer.
func (v *vulkanImageView) VK() vk.ImageView {
	return v.handle
}

type vulkanBufferView struct {
	device vk.Device
	handle vk.BufferView
}

func (v *vulkanBufferView) Destroy() {
	vk.DestroyBufferView(v.device, v.handle, nil)
}

// VK returns the native handle for binding by the rasterizer.
func (v *vulkanBufferView) VK() vk.BufferView {
	return v.handle
}

func vkFormat(f PixelFormat) vk.Format {
	switch f {
	case FormatABGR8:
		return vk.FormatA8b8g8r8UnormPack32
	case FormatBGR565:
		return vk.FormatR5g6b5UnormPack16
	case FormatR8:
		return vk.FormatR8Unorm
	case FormatR16F:
		return vk.FormatR16Sfloat
	case FormatR32F:
		return vk.FormatR32Sfloat
	case FormatR32UI:
		return vk.FormatR32Uint
	case FormatRG8:
		return vk.FormatR8g8Unorm
	case FormatRGBA16F:
		return vk.FormatR16g16b16a16Sfloat
	case FormatRGBA32F:
		return vk.FormatR32g32b32a32Sfloat
	case FormatDXT1:
		return vk.FormatBc1RgbaUnormBlock
	case FormatDXT23:
		return vk.FormatBc2UnormBlock
	case FormatDXT45:
		return vk.FormatBc3UnormBlock
	case FormatD16:
		return vk.FormatD16Unorm
	case FormatD32F:
		return vk.FormatD32Sfloat
	case FormatD24S8:
		return vk.FormatD24UnormS8Uint
	default:
		return vk.FormatUndefined
	}
}

func vkImageType(t SurfaceTarget) vk.ImageType {
	switch t {
	case Target1D, Target1DArray:
		return vk.ImageType1d
	case Target3D:
		return vk.ImageType3d
	default:
		return vk.ImageType2d
	}
}

func vkViewType(t SurfaceTarget) vk.ImageViewType {
	switch t {
	case Target1D:
		return vk.ImageViewType1d
	case Target1DArray:
		return vk.ImageViewType1dArray
	case Target3D:
		return vk.ImageViewType3d
	case Target2DArray:
		return vk.ImageViewType2dArray
	case TargetCube:
		return vk.ImageViewTypeCube
	case TargetCubeArray:
		return vk.ImageViewTypeCubeArray
	default:
		return vk.ImageViewType2d
	}
}

func vkImageUsage(u UsageFlags) vk.ImageUsageFlags {
	// Transfer both ways is always needed for guest synchronization.
	usage := vk.ImageUsageTransferSrcBit | vk.ImageUsageTransferDstBit | vk.ImageUsageSampledBit
	if u&UsageRenderTarget != 0 {
		usage |= vk.ImageUsageColorAttachmentBit
	}
	if u&UsageDepthStencil != 0 {
		usage |= vk.ImageUsageDepthStencilAttachmentBit
	}
	return vk.ImageUsageFlags(usage)
}

func vkBufferUsage(u BufferUsage) vk.BufferUsageFlags {
	var usage vk.BufferUsageFlagBits
	if u&BufferUsageTransferSrc != 0 {
		usage |= vk.BufferUsageTransferSrcBit
	}
	if u&BufferUsageTransferDst != 0 {
		usage |= vk.BufferUsageTransferDstBit
	}
	if u&BufferUsageTexelBuffer != 0 {
		usage |= vk.BufferUsageUniformTexelBufferBit
	}
	return vk.BufferUsageFlags(usage)
}

func vkAspect(a ImageAspect) vk.ImageAspectFlags {
	var flags vk.ImageAspectFlagBits
	if a&AspectColor != 0 {
		flags |= vk.ImageAspectColorBit
	}
	if a&AspectDepth != 0 {
		flags |= vk.ImageAspectDepthBit
	}
	if a&AspectStencil != 0 {
		flags |= vk.ImageAspectStencilBit
	}
	return vk.ImageAspectFlags(flags)
}

func vkLayout(l ImageLayout) vk.ImageLayout {
	switch l {
	case LayoutGeneral:
		return vk.ImageLayoutGeneral
	case LayoutTransferSrc:
		return vk.ImageLayoutTransferSrcOptimal
	case LayoutTransferDst:
		return vk.ImageLayoutTransferDstOptimal
	case LayoutShaderReadOnly:
		return vk.ImageLayoutShaderReadOnlyOptimal
	case LayoutColorAttachment:
		return vk.ImageLayoutColorAttachmentOptimal
	case LayoutDepthStencilAttachment:
		return vk.ImageLayoutDepthStencilAttachmentOptimal
	default:
		return vk.ImageLayoutUndefined
	}
}

func vkStage(s PipelineStage) vk.PipelineStageFlags {
	var flags vk.PipelineStageFlagBits
	if s&StageTopOfPipe != 0 {
		flags |= vk.PipelineStageTopOfPipeBit
	}
	if s&StageTransfer != 0 {
		flags |= vk.PipelineStageTransferBit
	}
	if s&StageVertexShader != 0 {
		flags |= vk.PipelineStageVertexShaderBit
	}
	if s&StageFragmentShader != 0 {
		flags |= vk.PipelineStageFragmentShaderBit
	}
	if s&StageEarlyFragmentTests != 0 {
		flags |= vk.PipelineStageEarlyFragmentTestsBit
	}
	if s&StageColorAttachmentOutput != 0 {
		flags |= vk.PipelineStageColorAttachmentOutputBit
	}
	if s&StageAllCommands != 0 {
		flags |= vk.PipelineStageAllCommandsBit
	}
	if flags == 0 {
		flags = vk.PipelineStageTopOfPipeBit
	}
	return vk.PipelineStageFlags(flags)
}

func vkAccess(a Access) vk.AccessFlags {
	var flags vk.AccessFlagBits
	if a&AccessTransferRead != 0 {
		flags |= vk.AccessTransferReadBit
	}
	if a&AccessTransferWrite != 0 {
		flags |= vk.AccessTransferWriteBit
	}
	if a&AccessShaderRead != 0 {
		flags |= vk.AccessShaderReadBit
	}
	if a&AccessShaderWrite != 0 {
		flags |= vk.AccessShaderWriteBit
	}
	if a&AccessColorAttachmentRead != 0 {
		flags |= vk.AccessColorAttachmentReadBit
	}
	if a&AccessColorAttachmentWrite != 0 {
		flags |= vk.AccessColorAttachmentWriteBit
	}
	if a&AccessDepthStencilRead != 0 {
		flags |= vk.AccessDepthStencilAttachmentReadBit
	}
	if a&AccessDepthStencilWrite != 0 {
		flags |= vk.AccessDepthStencilAttachmentWriteBit
	}
	return vk.AccessFlags(flags)
}

func vkSwizzle(s SwizzleSource) vk.ComponentSwizzle {
	switch s {
	case SwizzleZero:
		return vk.ComponentSwizzleZero
	case SwizzleR:
		return vk.ComponentSwizzleR
	case SwizzleG:
		return vk.ComponentSwizzleG
	case SwizzleB:
		return vk.ComponentSwizzleB
	case SwizzleA:
		return vk.ComponentSwizzleA
	case SwizzleOneInt, SwizzleOneFloat:
		return vk.ComponentSwizzleOne
	default:
		return vk.ComponentSwizzleIdentity
	}
}

func vkFilter(f Filter) vk.Filter {
	if f == FilterLinear {
		return vk.FilterLinear
	}
	return vk.FilterNearest
}

func vkRange(r SubresourceRange) vk.ImageSubresourceRange {
	return vk.ImageSubresourceRange{
		AspectMask:     vkAspect(r.Aspect),
		BaseMipLevel:   r.BaseLevel,
		LevelCount:     r.NumLevels,
		BaseArrayLayer: r.BaseLayer,
		LayerCount:     r.NumLayers,
	}
}

func vkLayers(l SubresourceLayers) vk.ImageSubresourceLayers {
	return vk.ImageSubresourceLayers{
		AspectMask:     vkAspect(l.Aspect),
		MipLevel:       l.Level,
		BaseArrayLayer: l.BaseLayer,
		LayerCount:     l.NumLayers,
	}
}

func vkOffset(o Offset3D) vk.Offset3D {
	return vk.Offset3D{X: o.X, Y: o.Y, Z: o.Z}
}

func vkExtent(e Extent3D) vk.Extent3D {
	return vk.Extent3D{Width: e.Width, Height: e.Height, Depth: e.Depth}
}
