package ethereum

// Contract ABI fragments of the calls and events used by the redemption
// listener.

const depositLogABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "_depositContractAddress", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "_requester", "type": "address"},
      {"indexed": true, "internalType": "bytes32", "name": "_digest", "type": "bytes32"},
      {"indexed": false, "internalType": "uint256", "name": "_utxoValue", "type": "uint256"},
      {"indexed": false, "internalType": "bytes", "name": "_redeemerOutputScript", "type": "bytes"},
      {"indexed": false, "internalType": "uint256", "name": "_requestedFee", "type": "uint256"},
      {"indexed": false, "internalType": "bytes", "name": "_outpoint", "type": "bytes"}
    ],
    "name": "RedemptionRequested",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "_depositContractAddress", "type": "address"},
      {"indexed": false, "internalType": "bytes32", "name": "_signingGroupPubkeyX", "type": "bytes32"},
      {"indexed": false, "internalType": "bytes32", "name": "_signingGroupPubkeyY", "type": "bytes32"},
      {"indexed": false, "internalType": "uint256", "name": "_timestamp", "type": "uint256"}
    ],
    "name": "RegisteredPubkey",
    "type": "event"
  }
]`

const depositABIJSON = `[
  {
    "constant": true,
    "inputs": [],
    "name": "getKeepAddress",
    "outputs": [{"internalType": "address", "name": "", "type": "address"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "constant": true,
    "inputs": [],
    "name": "currentState",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

const bondedECDSAKeepABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "bytes32", "name": "digest", "type": "bytes32"},
      {"indexed": false, "internalType": "bytes32", "name": "r", "type": "bytes32"},
      {"indexed": false, "internalType": "bytes32", "name": "s", "type": "bytes32"},
      {"indexed": false, "internalType": "uint8", "name": "recoveryID", "type": "uint8"}
    ],
    "name": "SignatureSubmitted",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [],
    "name": "KeepClosed",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [],
    "name": "KeepTerminated",
    "type": "event"
  }
]`
