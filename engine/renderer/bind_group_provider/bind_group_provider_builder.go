package bind_group_provider

// BindGroupProviderOption defines a functional option for configuring a BindGroupProvider.
type BindGroupProviderOption func(*bindGroupProvider)

// WithIndexCount sets the number of indices for draw calls.
//
// Parameters:
//   - count: the index count
//
// Returns:
//   - BindGroupProviderOption: the option function
func WithIndexCount(count int) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.indexCount = count
	}
}
