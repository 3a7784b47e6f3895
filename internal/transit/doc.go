// Package transit synthesizes analytic transit light curves.
//
// Responsibilities: parameter validation, resolving the sky-projected
// star-planet separation for a time value (circular and eccentric orbits),
// and mapping that separation to relative stellar flux with the Mandel &
// Agol (2002) closed-form limb-darkening occultation model.
// Key types: Params, Geometry, Resolver, Synthesizer.
//
// Every sample is a pure function of the immutable Params and a single
// time value, so synthesis may run sequentially or across workers without
// locking. No file, plotting or CLI code is allowed in this package; those
// live in ldtable, timegrid, report and cmd/lightcurve.
package transit
