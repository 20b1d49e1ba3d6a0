package registry

import "encoding/json"

// ABI fragments submitted with each execute-function call. The gateway only
// needs the signatures of the functions actually invoked.

var registryABI = json.RawMessage(`[
  {"type":"function","name":"createListing","stateMutability":"nonpayable","inputs":[{"name":"vehicleId","type":"string"},{"name":"cid","type":"string"},{"name":"baseHourFee","type":"uint256"},{"name":"bondRequired","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"getListing","stateMutability":"view","inputs":[{"name":"vehicleId","type":"string"}],"outputs":[{"name":"owner","type":"address"},{"name":"cid","type":"string"},{"name":"baseHourFee","type":"uint256"},{"name":"bondRequired","type":"uint256"}]},
  {"type":"function","name":"getVehicleIds","stateMutability":"view","inputs":[],"outputs":[{"name":"vehicleIds","type":"string[]"}]},
  {"type":"function","name":"newRentalAgreement","stateMutability":"payable","inputs":[{"name":"vehicleId","type":"string"},{"name":"startDateTime","type":"uint256"},{"name":"endDateTime","type":"uint256"}],"outputs":[{"name":"agreement","type":"address"}]},
  {"type":"function","name":"getRentalContracts","stateMutability":"view","inputs":[{"name":"isOwner","type":"bool"},{"name":"addr","type":"address"}],"outputs":[{"name":"agreements","type":"address[]"}]}
]`)

var agreementABI = json.RawMessage(`[
  {"type":"function","name":"getAgreementDetails","stateMutability":"view","inputs":[],"outputs":[{"name":"details","type":"tuple"}]},
  {"type":"function","name":"approveContract","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"function","name":"rejectContract","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"function","name":"activateRentalContract","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"function","name":"endRentalContract","stateMutability":"nonpayable","inputs":[],"outputs":[]}
]`)
