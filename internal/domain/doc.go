// Package domain defines the core types of the netseg segmentation designer.
//
// This package contains the entities and value objects shared by the topology
// engine, the services and the HTTP layer. It has no storage or transport
// dependencies.
//
// # Canvas
//
// Node is an element placed on the design canvas (VLAN, subnet, router,
// switch, firewall, security zone ...). Adjacency is stored on the nodes as
// an undirected id list; Link is the derived edge list used for export and
// persistence. Design is a named, saved copy of a canvas.
//
// NodeType, Department and SecurityLevel are closed sets. Each NodeType
// carries a palette category, label and fixed canvas size.
//
// # Validation
//
// Finding is one issue reported by topology validation. The FindingKind
// determines the severity, title, suggestion and whether an automatic fix
// exists, so two findings of the same kind never disagree on those values.
//
// # Dashboard
//
// DepartmentZone, VirtualHost, TestResult and MetricsSnapshot back the
// department, host, connectivity test and monitoring views.
package domain
