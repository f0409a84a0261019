// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package core creates the graphics runtime instance and picks the
// physical device to run on.
//
// Instances are created by an InstanceFactory, which validates the
// requested validation layers before touching the runtime. Physical
// devices are enumerated and chosen by a DeviceSelector using a pluggable
// Predicate, optionally ordered by a Ranker. Devices belong to the
// instance they came from and must not be used after it is destroyed.
package core
