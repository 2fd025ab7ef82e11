package bind_group_provider

// BufferWrite is one staged upload: Data is written into the provider's buffer for Binding,
// starting at Offset bytes. Writes to a binding without a buffer are skipped.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}
