package config

type chainLoader struct {
	loaders []Loader
}

// NewChainLoader returns a Loader which will resolve configuration and credentials according to the provided array
// of Loaders.  The loaders are consulted sequentially, first to last.
func NewChainLoader(chain []Loader) *chainLoader {
	return &chainLoader{loaders: chain}
}

// Config will build an OktaConfig object using values looked up via the array of Loaders given to the constructor.
// If an error occurs, the next loader in the chain is consulted until the end of the array.  As such, this method will
// never return an error, but is required to satisfy the Loader interface.
//
// Values retrieved via the various loaders are merged using the OktaConfig.MergeIn() method.
func (l *chainLoader) Config(profile string, sources ...interface{}) (*OktaConfig, error) {
	c := new(OktaConfig)

	for _, ldr := range l.loaders {
		cf, err := ldr.Config(profile, sources...)
		if err != nil {
			logger.Debugf("error loading configuration: %v", err)
		}

		if cf != nil {
			c.MergeIn(cf)
		}
	}

	return c, nil
}

// Credentials will build an OktaCredentials object using values looked up via the array of Loaders given to the
// constructor. If an error occurs, the next loader in the chain is consulted until the end of the array.  As such,
// this method will never return an error, but is required to satisfy the Loader interface.
//
// Values retrieved via the various loaders are merged using the OktaCredentials.MergeIn() method.
func (l *chainLoader) Credentials(profile string, sources ...interface{}) (*OktaCredentials, error) {
	c := new(OktaCredentials)

	for _, ldr := range l.loaders {
		cr, err := ldr.Credentials(profile, sources...)
		if err != nil {
			logger.Debugf("error loading credentials: %v", err)
			continue
		}
		c.MergeIn(cr)
	}

	return c, nil
}
