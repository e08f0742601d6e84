package config

// MergeConfigs merges a config fragment into the primary config. Contracts
// and implementations are appended unless the primary config already
// declares the same contract name or implementation key.
func MergeConfigs(primary, fragment *Config) {
	if fragment == nil {
		return
	}

	contracts := make(map[string]bool, len(primary.Contracts))
	for _, c := range primary.Contracts {
		contracts[c.Name] = true
	}
	for _, c := range fragment.Contracts {
		if !contracts[c.Name] {
			primary.Contracts = append(primary.Contracts, c)
			contracts[c.Name] = true
		}
	}

	keys := make(map[string]bool, len(primary.Implementations))
	for _, impl := range primary.Implementations {
		keys[impl.Key] = true
	}
	for _, impl := range fragment.Implementations {
		if !keys[impl.Key] {
			primary.Implementations = append(primary.Implementations, impl)
			keys[impl.Key] = true
		}
	}
}

// DeepMergeConfigs merges override on top of base with override-wins
// semantics: a contract or implementation in override replaces the one
// with the same name or key in base, in place. Relative implementation
// sources are resolved against the ConfigDir of the config declaring them
// first, so the merged config does not depend on which directory it keeps.
func DeepMergeConfigs(base, override *Config) *Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	impls := deepMergeImplementations(
		resolveSources(base.Implementations, base.ConfigDir),
		resolveSources(override.Implementations, override.ConfigDir),
	)
	result := &Config{
		Contracts:       deepMergeContracts(base.Contracts, override.Contracts),
		Implementations: impls,
		ConfigDir:       base.ConfigDir,
	}
	if override.ConfigDir != "" {
		result.ConfigDir = override.ConfigDir
	}
	return result
}

func deepMergeContracts(base, override []ContractConfig) []ContractConfig {
	result := make([]ContractConfig, len(base))
	copy(result, base)

	idx := make(map[string]int, len(result))
	for i, c := range result {
		idx[c.Name] = i
	}
	for _, c := range override {
		if i, ok := idx[c.Name]; ok {
			result[i] = c
			continue
		}
		idx[c.Name] = len(result)
		result = append(result, c)
	}
	return result
}

func deepMergeImplementations(base, override []ImplementationConfig) []ImplementationConfig {
	result := make([]ImplementationConfig, len(base))
	copy(result, base)

	idx := make(map[string]int, len(result))
	for i, impl := range result {
		idx[impl.Key] = i
	}
	for _, impl := range override {
		if i, ok := idx[impl.Key]; ok {
			result[i] = impl
			continue
		}
		idx[impl.Key] = len(result)
		result = append(result, impl)
	}
	return result
}
